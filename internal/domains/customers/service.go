package customers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sangkips/customer-registry-service/internal/domains/customers/models"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Lifecycle event types published after a successful write.
const (
	EventCustomerCreated  = "customer.created"
	EventCustomerUpdated  = "customer.updated"
	EventCustomerDeleted  = "customer.deleted"
	EventCustomerRestored = "customer.restored"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrDuplicateEmail   = errors.New("email already registered")
)

// EventPublisher announces customer lifecycle changes.
type EventPublisher interface {
	PublishCustomerEvent(ctx context.Context, eventType string, customerID int32) error
}

type Service struct {
	repo   Repository
	events EventPublisher
}

func NewService(repo Repository, events EventPublisher) *Service {
	return &Service{repo: repo, events: events}
}

// CustomerPayload is the body of create and update requests. A nil field is
// absent: required on create, left untouched on update.
type CustomerPayload struct {
	Nome           *string `json:"nome"`
	Email          *string `json:"email"`
	Telefone       *string `json:"telefone"`
	Endereco       *string `json:"endereco"`
	Cidade         *string `json:"cidade"`
	Estado         *string `json:"estado"`
	Cep            *string `json:"cep"`
	DataNascimento *string `json:"dataNascimento"`
	Ativo          *bool   `json:"ativo"`

	// keys sent as an explicit JSON null, lower-cased
	nulls map[string]bool
}

// UnmarshalJSON keeps track of keys sent as null so an update can clear them.
func (p *CustomerPayload) UnmarshalJSON(data []byte) error {
	type plain CustomerPayload
	var fields plain
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = CustomerPayload(fields)
	p.nulls = nil
	for key, value := range raw {
		if string(bytes.TrimSpace(value)) == "null" {
			if p.nulls == nil {
				p.nulls = make(map[string]bool)
			}
			p.nulls[strings.ToLower(key)] = true
		}
	}
	return nil
}

func (p CustomerPayload) isNull(key string) bool {
	return p.nulls[strings.ToLower(key)]
}

type CustomerResponse struct {
	ID             int32     `json:"id"`
	Nome           string    `json:"nome"`
	Email          string    `json:"email"`
	Telefone       string    `json:"telefone"`
	Endereco       *string   `json:"endereco"`
	Cidade         *string   `json:"cidade"`
	Estado         *string   `json:"estado"`
	Cep            *string   `json:"cep"`
	DataNascimento *string   `json:"dataNascimento"`
	Ativo          bool      `json:"ativo"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toCustomerResponse(c models.Customer) CustomerResponse {
	resp := CustomerResponse{
		ID:        c.ID,
		Nome:      c.Nome,
		Email:     c.Email,
		Telefone:  c.Telefone,
		Endereco:  nullStringToPtr(c.Endereco),
		Cidade:    nullStringToPtr(c.Cidade),
		Estado:    nullStringToPtr(c.Estado),
		Cep:       nullStringToPtr(c.Cep),
		Ativo:     c.Ativo,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}

	if c.DataNascimento.Valid {
		date := c.DataNascimento.Time.Format(dateLayout)
		resp.DataNascimento = &date
	}

	return resp
}

type ListCustomersParams struct {
	Page  int32
	Limit int32
	Name  string
	Ativo *bool
}

type Pagination struct {
	CurrentPage  int32 `json:"currentPage"`
	TotalPages   int32 `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int32 `json:"itemsPerPage"`
}

type ListCustomersResponse struct {
	Clientes   []CustomerResponse `json:"clientes"`
	Pagination Pagination         `json:"pagination"`
}

type CustomerStats struct {
	Total    int64 `json:"total"`
	Ativos   int64 `json:"ativos"`
	Inativos int64 `json:"inativos"`
}

func (s *Service) ListCustomers(ctx context.Context, params ListCustomersParams) (*ListCustomersResponse, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = defaultPageSize
	}
	if params.Limit > maxPageSize {
		params.Limit = maxPageSize
	}

	offset := (int64(params.Page) - 1) * int64(params.Limit)
	if offset > math.MaxInt32 {
		offset = math.MaxInt32
	}

	name := nameFilter(params.Name)
	ativo := boolToNullBool(params.Ativo)

	customers, err := s.repo.ListCustomers(ctx, models.ListCustomersParams{
		Name:   name,
		Ativo:  ativo,
		Limit:  params.Limit,
		Offset: int32(offset),
	})
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}

	totalCount, err := s.repo.CountCustomers(ctx, models.CountCustomersParams{
		Name:  name,
		Ativo: ativo,
	})
	if err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}

	totalPages := int32(0)
	if totalCount > 0 {
		totalPages = int32((totalCount + int64(params.Limit) - 1) / int64(params.Limit))
	}

	response := make([]CustomerResponse, len(customers))
	for i, customer := range customers {
		response[i] = toCustomerResponse(customer)
	}

	return &ListCustomersResponse{
		Clientes: response,
		Pagination: Pagination{
			CurrentPage:  params.Page,
			TotalPages:   totalPages,
			TotalItems:   totalCount,
			ItemsPerPage: params.Limit,
		},
	}, nil
}

func (s *Service) GetCustomer(ctx context.Context, id int32) (*CustomerResponse, error) {
	customer, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("get customer %d: %w", id, err)
	}

	resp := toCustomerResponse(customer)
	return &resp, nil
}

func (s *Service) CreateCustomer(ctx context.Context, payload CustomerPayload) (*CustomerResponse, error) {
	if payload.Email != nil && *payload.Email != "" {
		taken, err := s.emailTaken(ctx, *payload.Email, 0)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrDuplicateEmail
		}
	}

	draft := CustomerDraft{
		Nome:           payload.Nome,
		Email:          payload.Email,
		Telefone:       payload.Telefone,
		Endereco:       payload.Endereco,
		Cidade:         payload.Cidade,
		Estado:         payload.Estado,
		Cep:            payload.Cep,
		DataNascimento: payload.DataNascimento,
		Ativo:          true,
	}
	if payload.Ativo != nil {
		draft.Ativo = *payload.Ativo
	}

	if errs := ValidateCustomer(draft); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	customer, err := s.repo.CreateCustomer(ctx, models.CreateCustomerParams{
		Nome:           *draft.Nome,
		Email:          *draft.Email,
		Telefone:       *draft.Telefone,
		Endereco:       ptrToNullString(draft.Endereco),
		Cidade:         ptrToNullString(draft.Cidade),
		Estado:         ptrToNullString(draft.Estado),
		Cep:            ptrToNullString(draft.Cep),
		DataNascimento: birthDateToNullTime(draft.DataNascimento),
		Ativo:          draft.Ativo,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("create customer: %w", err)
	}

	s.publish(ctx, EventCustomerCreated, customer.ID)

	resp := toCustomerResponse(customer)
	return &resp, nil
}

// UpdateCustomer applies patch over the stored row and validates the merged record.
func (s *Service) UpdateCustomer(ctx context.Context, id int32, patch CustomerPayload) (*CustomerResponse, error) {
	current, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("get customer %d: %w", id, err)
	}

	if patch.Email != nil && *patch.Email != "" && *patch.Email != current.Email {
		taken, err := s.emailTaken(ctx, *patch.Email, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrDuplicateEmail
		}
	}

	draft := mergeDraft(current, patch)
	if errs := ValidateCustomer(draft); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	customer, err := s.repo.UpdateCustomer(ctx, models.UpdateCustomerParams{
		ID:             id,
		Nome:           *draft.Nome,
		Email:          *draft.Email,
		Telefone:       *draft.Telefone,
		Endereco:       ptrToNullString(draft.Endereco),
		Cidade:         ptrToNullString(draft.Cidade),
		Estado:         ptrToNullString(draft.Estado),
		Cep:            ptrToNullString(draft.Cep),
		DataNascimento: birthDateToNullTime(draft.DataNascimento),
		Ativo:          draft.Ativo,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateEmail):
			return nil, err
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("update customer %d: %w", id, err)
	}

	s.publish(ctx, EventCustomerUpdated, customer.ID)

	resp := toCustomerResponse(customer)
	return &resp, nil
}

// DeleteCustomer marks the customer inactive. Deleting an inactive customer succeeds.
func (s *Service) DeleteCustomer(ctx context.Context, id int32) error {
	customer, err := s.setActive(ctx, id, false)
	if err != nil {
		return err
	}
	s.publish(ctx, EventCustomerDeleted, customer.ID)
	return nil
}

func (s *Service) RestoreCustomer(ctx context.Context, id int32) (*CustomerResponse, error) {
	customer, err := s.setActive(ctx, id, true)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, EventCustomerRestored, customer.ID)

	resp := toCustomerResponse(customer)
	return &resp, nil
}

func (s *Service) Stats(ctx context.Context) (*CustomerStats, error) {
	total, err := s.repo.CountCustomers(ctx, models.CountCustomersParams{})
	if err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}

	active, err := s.repo.CountCustomers(ctx, models.CountCustomersParams{
		Ativo: sql.NullBool{Bool: true, Valid: true},
	})
	if err != nil {
		return nil, fmt.Errorf("count active customers: %w", err)
	}

	inactive, err := s.repo.CountCustomers(ctx, models.CountCustomersParams{
		Ativo: sql.NullBool{Bool: false, Valid: true},
	})
	if err != nil {
		return nil, fmt.Errorf("count inactive customers: %w", err)
	}

	return &CustomerStats{
		Total:    total,
		Ativos:   active,
		Inativos: inactive,
	}, nil
}

func (s *Service) setActive(ctx context.Context, id int32, active bool) (models.Customer, error) {
	customer, err := s.repo.SetCustomerActive(ctx, models.SetCustomerActiveParams{
		ID:    id,
		Ativo: active,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Customer{}, ErrCustomerNotFound
		}
		return models.Customer{}, fmt.Errorf("set customer %d active=%t: %w", id, active, err)
	}
	return customer, nil
}

// emailTaken reports whether email belongs to a customer other than exceptID.
func (s *Service) emailTaken(ctx context.Context, email string, exceptID int32) (bool, error) {
	existing, err := s.repo.GetCustomerByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup customer by email: %w", err)
	}
	return existing.ID != exceptID, nil
}

func (s *Service) publish(ctx context.Context, eventType string, customerID int32) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishCustomerEvent(ctx, eventType, customerID); err != nil {
		log.Warn().Err(err).Str("event", eventType).Int32("customer_id", customerID).Msg("failed to publish customer event")
	}
}

func mergeDraft(current models.Customer, patch CustomerPayload) CustomerDraft {
	draft := CustomerDraft{
		Nome:     &current.Nome,
		Email:    &current.Email,
		Telefone: &current.Telefone,
		Endereco: nullStringToPtr(current.Endereco),
		Cidade:   nullStringToPtr(current.Cidade),
		Estado:   nullStringToPtr(current.Estado),
		Cep:      nullStringToPtr(current.Cep),
		Ativo:    current.Ativo,
	}
	if current.DataNascimento.Valid {
		date := current.DataNascimento.Time.Format(dateLayout)
		draft.DataNascimento = &date
	}

	// Explicit nulls clear the field; on a required field that surfaces as "obrigatório".
	draft.Nome = patchField(draft.Nome, patch.Nome, patch.isNull("nome"))
	draft.Email = patchField(draft.Email, patch.Email, patch.isNull("email"))
	draft.Telefone = patchField(draft.Telefone, patch.Telefone, patch.isNull("telefone"))
	draft.Endereco = patchField(draft.Endereco, patch.Endereco, patch.isNull("endereco"))
	draft.Cidade = patchField(draft.Cidade, patch.Cidade, patch.isNull("cidade"))
	draft.Estado = patchField(draft.Estado, patch.Estado, patch.isNull("estado"))
	draft.Cep = patchField(draft.Cep, patch.Cep, patch.isNull("cep"))
	draft.DataNascimento = patchField(draft.DataNascimento, patch.DataNascimento, patch.isNull("dataNascimento"))
	if patch.Ativo != nil {
		draft.Ativo = *patch.Ativo
	}

	return draft
}

func patchField(current, value *string, null bool) *string {
	switch {
	case null:
		return nil
	case value != nil:
		return value
	default:
		return current
	}
}

// nameFilter escapes LIKE wildcards so the name filter is a plain substring match.
func nameFilter(name string) sql.NullString {
	if name == "" {
		return sql.NullString{}
	}
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(name)
	return sql.NullString{String: escaped, Valid: true}
}

func boolToNullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

func ptrToNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullStringToPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// birthDateToNullTime expects a draft that already passed validation.
func birthDateToNullTime(s *string) sql.NullTime {
	if s == nil {
		return sql.NullTime{}
	}
	t, err := parseBirthDate(*s)
	if err != nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
