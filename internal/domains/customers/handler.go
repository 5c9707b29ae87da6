package customers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/customer-registry-service/internal/domains/customers/models"
	"github.com/sangkips/customer-registry-service/internal/handlers"
)

const (
	msgNotFound           = "Cliente não encontrado"
	msgDuplicateEmail     = "Email já cadastrado"
	msgInvalidData        = "Dados inválidos"
	msgInvalidID          = "ID de cliente inválido"
	msgInvalidBody        = "Corpo da requisição inválido"
	msgRequiredFields     = "Nome, email e telefone são obrigatórios"
	msgInvalidEmailFormat = "Formato de email inválido"
	msgCreated            = "Cliente criado com sucesso"
	msgUpdated            = "Cliente atualizado com sucesso"
	msgDeleted            = "Cliente excluído com sucesso"
	msgRestored           = "Cliente restaurado com sucesso"
	msgListed             = "Clientes listados com sucesso"
	msgFound              = "Cliente encontrado"
	msgStats              = "Estatísticas obtidas com sucesso"
)

type Handler struct {
	svc          *Service
	exposeErrors bool
}

// NewHandler wires the customers domain. exposeErrors adds internal error
// detail to 500 responses and is meant for development only.
func NewHandler(db models.DBTX, events EventPublisher, exposeErrors bool) *Handler {
	repo := NewRepository(db)
	return &Handler{svc: NewService(repo, events), exposeErrors: exposeErrors}
}

// RegisterCustomerRoutes mounts the customer routes. Literal segments go
// before {id} so /estatisticas is never read as an id.
func (h *Handler) RegisterCustomerRoutes(r chi.Router) {
	r.Get("/", h.listCustomers)
	r.Get("/estatisticas", h.customerStats)
	r.Get("/{id}", h.getCustomer)
	r.With(requireCustomerFields).Post("/", h.createCustomer)
	r.Put("/{id}", h.updateCustomer)
	r.Delete("/{id}", h.deleteCustomer)
	r.Patch("/{id}/restaurar", h.restoreCustomer)
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	params := ListCustomersParams{
		Page:  1,
		Limit: defaultPageSize,
		Name:  query.Get("nome"),
	}

	if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.ParseInt(pageStr, 10, 32); err == nil && p > 0 {
			params.Page = int32(p)
		}
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.ParseInt(limitStr, 10, 32); err == nil && l > 0 {
			params.Limit = int32(l)
		}
	}

	if ativoStr := query.Get("ativo"); ativoStr != "" {
		if ativo, err := strconv.ParseBool(ativoStr); err == nil {
			params.Ativo = &ativo
		}
	}

	response, err := h.svc.ListCustomers(r.Context(), params)
	if err != nil {
		h.internalError(w, err, "failed to list customers")
		return
	}

	handlers.RespondWithSuccess(w, http.StatusOK, msgListed, response)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := parseCustomerID(w, r)
	if !ok {
		return
	}

	customer, err := h.svc.GetCustomer(r.Context(), id)
	if err != nil {
		h.respondWithServiceError(w, err, "failed to get customer")
		return
	}

	handlers.RespondWithSuccess(w, http.StatusOK, msgFound, customer)
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req CustomerPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondWithError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	customer, err := h.svc.CreateCustomer(r.Context(), req)
	if err != nil {
		h.respondWithServiceError(w, err, "failed to create customer")
		return
	}

	log.Info().Int32("customer_id", customer.ID).Msg("customer created")
	handlers.RespondWithSuccess(w, http.StatusCreated, msgCreated, customer)
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := parseCustomerID(w, r)
	if !ok {
		return
	}

	var req CustomerPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondWithError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	customer, err := h.svc.UpdateCustomer(r.Context(), id, req)
	if err != nil {
		h.respondWithServiceError(w, err, "failed to update customer")
		return
	}

	handlers.RespondWithSuccess(w, http.StatusOK, msgUpdated, customer)
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := parseCustomerID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteCustomer(r.Context(), id); err != nil {
		h.respondWithServiceError(w, err, "failed to delete customer")
		return
	}

	handlers.RespondWithSuccess(w, http.StatusOK, msgDeleted, nil)
}

func (h *Handler) restoreCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := parseCustomerID(w, r)
	if !ok {
		return
	}

	customer, err := h.svc.RestoreCustomer(r.Context(), id)
	if err != nil {
		h.respondWithServiceError(w, err, "failed to restore customer")
		return
	}

	handlers.RespondWithSuccess(w, http.StatusOK, msgRestored, customer)
}

func (h *Handler) customerStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		h.internalError(w, err, "failed to compute customer stats")
		return
	}

	handlers.RespondWithSuccess(w, http.StatusOK, msgStats, stats)
}

func (h *Handler) respondWithServiceError(w http.ResponseWriter, err error, logMsg string) {
	var validationErr *ValidationError
	switch {
	case errors.Is(err, ErrCustomerNotFound):
		handlers.RespondWithError(w, http.StatusNotFound, msgNotFound)
	case errors.Is(err, ErrDuplicateEmail):
		handlers.RespondWithError(w, http.StatusBadRequest, msgDuplicateEmail)
	case errors.As(err, &validationErr):
		handlers.RespondWithValidationErrors(w, msgInvalidData, validationErr.Errors)
	default:
		h.internalError(w, err, logMsg)
	}
}

func (h *Handler) internalError(w http.ResponseWriter, err error, logMsg string) {
	log.Error().Err(err).Msg(logMsg)
	handlers.RespondWithInternalError(w, err, h.exposeErrors)
}

func parseCustomerID(w http.ResponseWriter, r *http.Request) (int32, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 32)
	if err != nil || id < 1 {
		handlers.RespondWithError(w, http.StatusBadRequest, msgInvalidID)
		return 0, false
	}
	return int32(id), true
}
