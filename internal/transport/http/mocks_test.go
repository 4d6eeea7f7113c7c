package http

import (
	"context"
	"io"

	"github.com/expertpanel/draw-service/internal/domain"
	"github.com/expertpanel/draw-service/internal/export"
	"github.com/expertpanel/draw-service/internal/service"
	"github.com/stretchr/testify/mock"
)

type DrawServiceMock struct {
	mock.Mock
}

var _ service.DrawService = (*DrawServiceMock)(nil)

func (m *DrawServiceMock) CreateDraw(ctx context.Context, params service.CreateDrawParams) (*domain.Draw, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Draw), args.Error(1)
}

func (m *DrawServiceMock) GetDraw(ctx context.Context, drawID int64) (*domain.Draw, error) {
	args := m.Called(ctx, drawID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Draw), args.Error(1)
}

func (m *DrawServiceMock) ListDraws(ctx context.Context, params domain.PageParams) ([]domain.Draw, int, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}

	return args.Get(0).([]domain.Draw), args.Int(1), args.Error(2)
}

func (m *DrawServiceMock) UpdateDraw(ctx context.Context, drawID int64, params service.UpdateDrawParams) (*domain.Draw, error) {
	args := m.Called(ctx, drawID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Draw), args.Error(1)
}

func (m *DrawServiceMock) DeleteDraws(ctx context.Context, drawIDs []int64) (int64, error) {
	args := m.Called(ctx, drawIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *DrawServiceMock) CancelDraw(ctx context.Context, drawID int64) (*domain.Draw, error) {
	args := m.Called(ctx, drawID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Draw), args.Error(1)
}

func (m *DrawServiceMock) Execute(ctx context.Context, drawID int64) ([]domain.DrawResult, error) {
	args := m.Called(ctx, drawID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.DrawResult), args.Error(1)
}

func (m *DrawServiceMock) RecordContact(ctx context.Context, drawID, resultID int64, status domain.ContactStatus, autoReplace bool) ([]domain.DrawResult, error) {
	args := m.Called(ctx, drawID, resultID, status, autoReplace)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.DrawResult), args.Error(1)
}

func (m *DrawServiceMock) Replace(ctx context.Context, drawID, resultID int64) ([]domain.DrawResult, error) {
	args := m.Called(ctx, drawID, resultID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.DrawResult), args.Error(1)
}

type ResultServiceMock struct {
	mock.Mock
}

var _ service.ResultService = (*ResultServiceMock)(nil)

func (m *ResultServiceMock) ListResults(ctx context.Context, drawID int64, params domain.PageParams) ([]domain.DrawResult, int, error) {
	args := m.Called(ctx, drawID, params)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}

	return args.Get(0).([]domain.DrawResult), args.Int(1), args.Error(2)
}

func (m *ResultServiceMock) ExportResultsCSV(ctx context.Context, drawID int64, w io.Writer) error {
	args := m.Called(ctx, drawID, w)
	return args.Error(0)
}

func (m *ResultServiceMock) SignInSheet(ctx context.Context, drawID int64) (*export.SignInSheet, error) {
	args := m.Called(ctx, drawID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*export.SignInSheet), args.Error(1)
}
