package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"rpscreen/internal/records/models"
	dErrors "rpscreen/pkg/domain-errors"
	"rpscreen/pkg/platform/httputil"
	"rpscreen/pkg/requestcontext"
)

// Service defines the record operations exposed over HTTP.
type Service interface {
	CreateCustomer(ctx context.Context, in models.NewCustomerInput) (*models.Customer, error)
	ListCustomers(ctx context.Context) []models.Customer
	UpdateCustomer(ctx context.Context, id int, patch models.CustomerPatch) (*models.Customer, error)
	DeleteCustomer(ctx context.Context, id int) (*models.Customer, error)

	CreateRestrictedParty(ctx context.Context, in models.NewRestrictedPartyInput) (*models.RestrictedParty, error)
	ListRestrictedParties(ctx context.Context) []models.RestrictedParty
	UpdateRestrictedParty(ctx context.Context, id int, patch models.RestrictedPartyPatch) (*models.RestrictedParty, error)
	DeleteRestrictedParty(ctx context.Context, id int) (*models.RestrictedParty, error)
}

// Handler wires customer and restricted party endpoints to the records service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a records handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the record endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/customers", h.HandleListCustomers)
	r.Post("/api/customers", h.HandleCreateCustomer)
	r.Put("/api/customers/{id}", h.HandleUpdateCustomer)
	r.Delete("/api/customers/{id}", h.HandleDeleteCustomer)

	r.Get("/api/restricted-parties", h.HandleListRestrictedParties)
	r.Post("/api/restricted-parties", h.HandleCreateRestrictedParty)
	r.Put("/api/restricted-parties/{id}", h.HandleUpdateRestrictedParty)
	r.Delete("/api/restricted-parties/{id}", h.HandleDeleteRestrictedParty)
}

func (h *Handler) HandleListCustomers(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.service.ListCustomers(r.Context()))
}

func (h *Handler) HandleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CustomerRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	c, err := h.service.CreateCustomer(ctx, req.Input())
	if err != nil {
		h.logFailure(ctx, "failed to create customer", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) HandleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[CustomerPatchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	c, err := h.service.UpdateCustomer(ctx, id, req.Patch())
	if err != nil {
		h.logFailure(ctx, "failed to update customer", err, "customer_id", id)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) HandleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	c, err := h.service.DeleteCustomer(ctx, id)
	if err != nil {
		h.logFailure(ctx, "failed to delete customer", err, "customer_id", id)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, DeletedCustomerResponse{Success: true, Customer: c})
}

func (h *Handler) HandleListRestrictedParties(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.service.ListRestrictedParties(r.Context()))
}

func (h *Handler) HandleCreateRestrictedParty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RestrictedPartyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	p, err := h.service.CreateRestrictedParty(ctx, req.Input())
	if err != nil {
		h.logFailure(ctx, "failed to create restricted party", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) HandleUpdateRestrictedParty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[RestrictedPartyPatchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	p, err := h.service.UpdateRestrictedParty(ctx, id, req.Patch())
	if err != nil {
		h.logFailure(ctx, "failed to update restricted party", err, "restricted_party_id", id)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) HandleDeleteRestrictedParty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	p, err := h.service.DeleteRestrictedParty(ctx, id)
	if err != nil {
		h.logFailure(ctx, "failed to delete restricted party", err, "restricted_party_id", id)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, DeletedRestrictedPartyResponse{Success: true, Party: p})
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "id must be an integer"))
		return 0, false
	}
	return id, true
}

// logFailure logs expected client errors at warn and everything else at error.
func (h *Handler) logFailure(ctx context.Context, msg string, err error, attrs ...any) {
	attrs = append(attrs, "request_id", requestcontext.RequestID(ctx), "error", err)
	if dErrors.HasCode(err, dErrors.CodeInternal) || dErrors.HasCode(err, dErrors.CodeUnavailable) {
		h.logger.ErrorContext(ctx, msg, attrs...)
		return
	}
	h.logger.WarnContext(ctx, msg, attrs...)
}
