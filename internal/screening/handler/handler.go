package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"rpscreen/internal/screening/models"
	dErrors "rpscreen/pkg/domain-errors"
	"rpscreen/pkg/platform/httputil"
	"rpscreen/pkg/requestcontext"
)

// Service defines the screening operations exposed over HTTP.
type Service interface {
	Run(ctx context.Context) ([]models.Match, error)
	List(ctx context.Context) []models.Match
	UpdateHold(ctx context.Context, index int, holdType, dtype string) (*models.Match, error)
}

// Handler serves screening runs and the match list.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/api/screening", h.HandleRun)
	r.Get("/api/matches", h.HandleList)
	r.Put("/api/matches/{index}/hold", h.HandleUpdateHold)
}

func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	matches, err := h.service.Run(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "screening run failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newRunResponse(matches))
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.service.List(r.Context()))
}

func (h *Handler) HandleUpdateHold(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "index must be an integer"))
		return
	}
	req, ok := httputil.DecodeAndPrepare[HoldRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	m, err := h.service.UpdateHold(ctx, index, req.HoldType, req.DType)
	if err != nil {
		attrs := []any{"request_id", requestID, "match_index", index, "error", err}
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.WarnContext(ctx, "hold update for unknown match", attrs...)
		} else {
			h.logger.ErrorContext(ctx, "failed to update hold", attrs...)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, HoldResponse{Success: true, Index: index, Match: m})
}
