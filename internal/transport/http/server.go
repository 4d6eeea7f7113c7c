// package http implements the HTTP transport layer for the service.
// It handles incoming requests, decodes them, calls the appropriate service methods,
// and encodes the responses.
package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/expertpanel/draw-service/internal/apperrors"
	"github.com/expertpanel/draw-service/internal/domain"
	"github.com/expertpanel/draw-service/internal/service"
	"github.com/expertpanel/draw-service/internal/validation"
	"github.com/expertpanel/draw-service/pkg/logger/sl"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server holds the dependencies for the HTTP server, including the logger and service interfaces.
type Server struct {
	log           *slog.Logger
	drawService   service.DrawService
	resultService service.ResultService
}

// NewServer creates a new instance of the HTTP server.
func NewServer(
	log *slog.Logger,
	ds service.DrawService,
	rs service.ResultService,
) *Server {
	return &Server{
		log:           log,
		drawService:   ds,
		resultService: rs,
	}
}

// Routes sets up the router with all middleware and API endpoints.
func (s *Server) Routes() http.Handler {
	mux := chi.NewRouter()

	mux.Use(s.requestID)
	mux.Use(s.logRequest)
	mux.Use(s.metricsMiddleware)

	mux.Handle("/metrics", promhttp.Handler())

	mux.Route("/draws", func(r chi.Router) {
		r.Get("/", s.listDraws)
		r.Post("/apply", s.applyDraw)
		r.Post("/batch-delete", s.batchDeleteDraws)

		r.Route("/{drawID}", func(r chi.Router) {
			r.Get("/", s.getDraw)
			r.Put("/", s.updateDraw)
			r.Delete("/", s.deleteDraw)
			r.Post("/cancel", s.cancelDraw)
			r.Post("/execute", s.executeDraw)

			r.Get("/results", s.listResults)
			r.Get("/results/export", s.exportResults)
			r.Get("/sign-in-sheet", s.signInSheet)
			r.Post("/results/{resultID}/contact", s.recordContact)
			r.Post("/results/{resultID}/replace", s.replaceResult)
		})
	})

	return mux
}

func (s *Server) applyDraw(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.applyDraw"

	var req applyDrawRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	draw, err := s.drawService.CreateDraw(r.Context(), service.CreateDrawParams{
		RuleID:         req.RuleID,
		ProjectName:    req.ProjectName,
		ProjectCode:    req.ProjectCode,
		ExpertCount:    req.ExpertCount,
		BackupCount:    req.BackupCount,
		DrawMethod:     req.DrawMethod,
		ReviewTime:     req.ReviewTime,
		ReviewLocation: req.ReviewLocation,
		AvoidUnits:     req.AvoidUnits,
		AvoidPersons:   req.AvoidPersons,
	})
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusCreated, map[string]drawResponse{"draw": toDrawResponse(draw)})
}

func (s *Server) listDraws(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.listDraws"

	draws, total, err := s.drawService.ListDraws(r.Context(), pageParamsFromQuery(r))
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, pageResponse{Items: toDrawResponses(draws), Total: total})
}

func (s *Server) getDraw(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.getDraw"

	drawID, err := parseID(r, "drawID")
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	draw, err := s.drawService.GetDraw(r.Context(), drawID)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]drawResponse{"draw": toDrawResponse(draw)})
}

func (s *Server) updateDraw(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.updateDraw"

	drawID, err := parseID(r, "drawID")
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	var req updateDrawRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	draw, err := s.drawService.UpdateDraw(r.Context(), drawID, service.UpdateDrawParams{
		RuleID:         req.RuleID,
		RuleIDSet:      req.RuleID != nil,
		ProjectName:    req.ProjectName,
		ProjectCode:    req.ProjectCode,
		ExpertCount:    req.ExpertCount,
		BackupCount:    req.BackupCount,
		DrawMethod:     req.DrawMethod,
		ReviewTime:     req.ReviewTime,
		ReviewLocation: req.ReviewLocation,
		AvoidUnits:     req.AvoidUnits,
		AvoidPersons:   req.AvoidPersons,
	})
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]drawResponse{"draw": toDrawResponse(draw)})
}

func (s *Server) deleteDraw(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.deleteDraw"

	drawID, err := parseID(r, "drawID")
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	deleted, err := s.drawService.DeleteDraws(r.Context(), []int64{drawID})
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}
	if deleted == 0 {
		s.handleServiceError(w, op, apperrors.ErrNotFound)
		return
	}

	s.respond(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

func (s *Server) batchDeleteDraws(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.batchDeleteDraws"

	var req batchDeleteRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	deleted, err := s.drawService.DeleteDraws(r.Context(), req.IDs)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

func (s *Server) cancelDraw(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.cancelDraw"

	drawID, err := parseID(r, "drawID")
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	draw, err := s.drawService.CancelDraw(r.Context(), drawID)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]drawResponse{"draw": toDrawResponse(draw)})
}

func (s *Server) executeDraw(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.executeDraw"

	drawID, err := parseID(r, "drawID")
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	results, err := s.drawService.Execute(r.Context(), drawID)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	drawsExecutedTotal.Inc()

	s.respond(w, http.StatusOK, map[string][]resultResponse{"results": toResultResponses(results)})
}

func (s *Server) recordContact(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.recordContact"

	drawID, err := parseID(r, "drawID")
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}
	resultID, err := parseID(r, "resultID")
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	var req recordContactRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	results, err := s.drawService.RecordContact(
		r.Context(), drawID, resultID,
		domain.ContactStatus(req.ContactStatus), req.AutoReplace,
	)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string][]resultResponse{"results": toResultResponses(results)})
}

func (s *Server) replaceResult(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.replaceResult"

	drawID, err := parseID(r, "drawID")
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}
	resultID, err := parseID(r, "resultID")
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	results, err := s.drawService.Replace(r.Context(), drawID, resultID)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string][]resultResponse{"results": toResultResponses(results)})
}

func (s *Server) listResults(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.listResults"

	drawID, err := parseID(r, "drawID")
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	results, total, err := s.resultService.ListResults(r.Context(), drawID, pageParamsFromQuery(r))
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, pageResponse{Items: toResultResponses(results), Total: total})
}

func (s *Server) exportResults(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.exportResults"

	drawID, err := parseID(r, "drawID")
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	// Buffer the document so a service failure can still produce a JSON
	// error response.
	var buf bytes.Buffer
	if err := s.resultService.ExportResultsCSV(r.Context(), drawID, &buf); err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	filename := fmt.Sprintf("draw_results_%d.csv", drawID)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)

	if _, err := buf.WriteTo(w); err != nil {
		s.log.Error("failed to write export body", sl.Err(err))
	}
}

func (s *Server) signInSheet(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.signInSheet"

	drawID, err := parseID(r, "drawID")
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	sheet, err := s.resultService.SignInSheet(r.Context(), drawID)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, sheet)
}

// parseID extracts a positive integer URL parameter.
func parseID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: '%s' must be a positive integer", apperrors.ErrInvalidRequest, name)
	}

	return id, nil
}

func pageParamsFromQuery(r *http.Request) domain.PageParams {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	return domain.PageParams{
		Keyword:   q.Get("keyword"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
		Page:      page,
		PageSize:  pageSize,
	}
}

// respond is a helper function to encode data to JSON and write it to the response.
// It centralizes setting the Content-Type header and writing the status code.
func (s *Server) respond(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.log.Error("failed to encode response", sl.Err(err))
		}
	}
}

// respondError is a convenience wrapper around respond for sending simple error messages.
func (s *Server) respondError(w http.ResponseWriter, code int, message string) {
	s.respond(w, code, map[string]string{"error": message})
}

// decodeAndValidate is a helper that deserializes a JSON request body into a struct
// and then runs validation checks on it.
func (s *Server) decodeAndValidate(r *http.Request, v interface{}) error {
	if err := s.decode(r.Body, v); err != nil {
		return err
	}

	if err := validation.ValidateStruct(v); err != nil {
		return err
	}

	return nil
}

// decode is a helper function to decode a JSON request body.
func (s *Server) decode(body io.ReadCloser, v interface{}) error {
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidRequest, err)
	}

	return nil
}

// handleServiceError provides centralized error handling for all HTTP handlers.
// It logs the internal error and maps it to a user-friendly HTTP response.
func (s *Server) handleServiceError(w http.ResponseWriter, op string, err error) {
	log := s.log.With(slog.String("op", op))
	log.Error("service error occurred", sl.Err(err))

	var validationErr *validation.ValidationError

	switch {
	case errors.As(err, &validationErr):
		wrappedErr := fmt.Errorf("%w: %s", apperrors.ErrValidation, validationErr.Error())
		s.respondError(w, http.StatusBadRequest, wrappedErr.Error())
	case errors.Is(err, apperrors.ErrInvalidRequest):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperrors.ErrInsufficientCandidates):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperrors.ErrValidation):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, apperrors.ErrConflict):
		s.respondError(w, http.StatusConflict, err.Error())
	default:
		s.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
