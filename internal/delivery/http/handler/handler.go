package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/user/roleta-service/internal/delivery/http/request"
	"github.com/user/roleta-service/internal/delivery/http/response"
	"github.com/user/roleta-service/internal/entity"
	"github.com/user/roleta-service/internal/presenter"
	"github.com/user/roleta-service/internal/repository"
	"github.com/user/roleta-service/internal/usecase"
)

const healthTimeout = 2 * time.Second

type Handler struct {
	roleta usecase.Roleta
	lists  usecase.ListProvider
	store  repository.SnapshotRepository
	logger *zap.Logger
}

func NewHandler(roleta usecase.Roleta, lists usecase.ListProvider, store repository.SnapshotRepository, logger *zap.Logger) *Handler {
	return &Handler{
		roleta: roleta,
		lists:  lists,
		store:  store,
		logger: logger,
	}
}

func (h *Handler) HandleSpin(w http.ResponseWriter, r *http.Request) {
	var req request.SpinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sink := &jsonSink{w: w, h: h}
	if err := h.roleta.Spin(r.Context(), req.Balas, sink); err != nil {
		if errors.Is(err, usecase.ErrInvalidBalas) {
			h.writeJSONError(w, usecase.ErrInvalidBalas.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to write spin response", zap.Error(err))
		if !sink.written {
			h.writeJSONError(w, usecase.UnavailableMessage, http.StatusServiceUnavailable)
		}
	}
}

func (h *Handler) HandleFestim(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, response.FestimResponse{URL: h.roleta.Festim()})
}

func (h *Handler) HandleGetList(w http.ResponseWriter, r *http.Request) {
	category := entity.Category(chi.URLParam(r, "category"))
	if !category.Valid() {
		h.writeJSONError(w, "Unknown category", http.StatusNotFound)
		return
	}

	res := h.lists.GetList(r.Context(), category)
	if len(res.Films) == 0 {
		h.writeJSONError(w, usecase.UnavailableMessage, http.StatusServiceUnavailable)
		return
	}

	resp := response.ListResponse{
		Category: res.Category,
		Origin:   res.Origin,
		Count:    len(res.Films),
		Films:    res.Films,
	}
	if !res.FetchedAt.IsZero() {
		fetchedAt := res.FetchedAt
		resp.FetchedAt = &fetchedAt
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Error("health check failed for snapshot store", zap.Error(err))
		h.writeJSON(w, http.StatusServiceUnavailable, response.HealthResponse{Status: "degraded", SnapshotStore: "unhealthy"})
		return
	}
	h.writeJSON(w, http.StatusOK, response.HealthResponse{Status: "ok", SnapshotStore: "healthy"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, response.ErrorResponse{Error: message})
}

// jsonSink answers a single spin request.
type jsonSink struct {
	w       http.ResponseWriter
	h       *Handler
	written bool
}

func (s *jsonSink) Present(_ context.Context, sel *entity.Selection) error {
	body, err := json.Marshal(response.SpinResponse{
		Card:      presenter.NewCard(sel),
		DrawnBad:  sel.DrawnBad,
		DrawnGood: sel.DrawnGood,
	})
	if err != nil {
		return err
	}
	s.written = true
	s.w.Header().Set("Content-Type", "application/json")
	s.w.WriteHeader(http.StatusOK)
	_, err = s.w.Write(append(body, '\n'))
	return err
}

func (s *jsonSink) Unavailable(_ context.Context, message string) error {
	if s.written {
		// Headers are gone; the client already has a partial card.
		return nil
	}
	s.written = true
	s.h.writeJSONError(s.w, message, http.StatusServiceUnavailable)
	return nil
}
