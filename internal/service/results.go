package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/expertpanel/draw-service/internal/domain"
	"github.com/expertpanel/draw-service/internal/export"
	"github.com/expertpanel/draw-service/internal/repository"
	"github.com/expertpanel/draw-service/internal/terms"
)

// ResultService is the read-only adapter over draw results: listing,
// masked export and the sign-in sheet.
type ResultService interface {
	ListResults(ctx context.Context, drawID int64, params domain.PageParams) ([]domain.DrawResult, int, error)
	ExportResultsCSV(ctx context.Context, drawID int64, w io.Writer) error
	SignInSheet(ctx context.Context, drawID int64) (*export.SignInSheet, error)
}

type ResultServiceImpl struct {
	log       *slog.Logger
	drawQuery repository.DrawQueryRepository
}

func NewResultService(log *slog.Logger, drawQuery repository.DrawQueryRepository) *ResultServiceImpl {
	return &ResultServiceImpl{
		log:       log,
		drawQuery: drawQuery,
	}
}

func (s *ResultServiceImpl) ListResults(ctx context.Context, drawID int64, params domain.PageParams) ([]domain.DrawResult, int, error) {
	const op = "internal.service.results.ListResults"

	if _, err := s.drawQuery.GetDrawByID(ctx, nil, drawID); err != nil {
		return nil, 0, err
	}

	results, total, err := s.drawQuery.ListResultsPage(ctx, drawID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: failed to list results: %w", op, err)
	}

	return results, total, nil
}

func (s *ResultServiceImpl) ExportResultsCSV(ctx context.Context, drawID int64, w io.Writer) error {
	const op = "internal.service.results.ExportResultsCSV"

	if _, err := s.drawQuery.GetDrawByID(ctx, nil, drawID); err != nil {
		return err
	}

	results, err := s.drawQuery.ListResults(ctx, nil, drawID)
	if err != nil {
		return fmt.Errorf("%s: failed to load results: %w", op, err)
	}

	if err := export.WriteResultsCSV(w, results); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("results exported",
		slog.String("op", op),
		slog.Int64("draw_id", drawID),
		slog.Int("rows", len(results)),
	)

	return nil
}

func (s *ResultServiceImpl) SignInSheet(ctx context.Context, drawID int64) (*export.SignInSheet, error) {
	const op = "internal.service.results.SignInSheet"

	draw, err := s.drawQuery.GetDrawByID(ctx, nil, drawID)
	if err != nil {
		return nil, err
	}

	results, err := s.drawQuery.ListResults(ctx, nil, drawID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to load results: %w", op, err)
	}

	// The avoided labels on the sheet are the operator's own tokens.
	avoidUnits := terms.Split(draw.AvoidUnits)

	return export.BuildSignInSheet(draw, results, avoidUnits), nil
}
