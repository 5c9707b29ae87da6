package customers

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/sangkips/customer-registry-service/internal/domains/customers/models"
)

// memoryRepository keeps customers in a map and mimics the SQL semantics
// (ILIKE name filter, ativo filter, ordering by nome then id, email uniqueness).
type memoryRepository struct {
	rows   map[int32]models.Customer
	nextID int32

	// err, when set, is returned by every call
	err error

	listCalls  []models.ListCustomersParams
	countCalls []models.CountCustomersParams
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{rows: make(map[int32]models.Customer), nextID: 1}
}

func (m *memoryRepository) GetCustomer(ctx context.Context, id int32) (models.Customer, error) {
	if m.err != nil {
		return models.Customer{}, m.err
	}
	c, ok := m.rows[id]
	if !ok {
		return models.Customer{}, sql.ErrNoRows
	}
	return c, nil
}

func (m *memoryRepository) GetCustomerByEmail(ctx context.Context, email string) (models.Customer, error) {
	if m.err != nil {
		return models.Customer{}, m.err
	}
	for _, c := range m.rows {
		if c.Email == email {
			return c, nil
		}
	}
	return models.Customer{}, sql.ErrNoRows
}

func (m *memoryRepository) ListCustomers(ctx context.Context, params models.ListCustomersParams) ([]models.Customer, error) {
	m.listCalls = append(m.listCalls, params)
	if m.err != nil {
		return nil, m.err
	}

	matched := m.filter(params.Name, params.Ativo)
	start := int(params.Offset)
	if start > len(matched) {
		start = len(matched)
	}
	end := start + int(params.Limit)
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

func (m *memoryRepository) CountCustomers(ctx context.Context, params models.CountCustomersParams) (int64, error) {
	m.countCalls = append(m.countCalls, params)
	if m.err != nil {
		return 0, m.err
	}
	return int64(len(m.filter(params.Name, params.Ativo))), nil
}

func (m *memoryRepository) CreateCustomer(ctx context.Context, params models.CreateCustomerParams) (models.Customer, error) {
	if m.err != nil {
		return models.Customer{}, m.err
	}
	if m.emailInUse(params.Email, 0) {
		return models.Customer{}, ErrDuplicateEmail
	}

	now := time.Now()
	c := models.Customer{
		ID:             m.nextID,
		Nome:           params.Nome,
		Email:          params.Email,
		Telefone:       params.Telefone,
		Endereco:       params.Endereco,
		Cidade:         params.Cidade,
		Estado:         params.Estado,
		Cep:            params.Cep,
		DataNascimento: params.DataNascimento,
		Ativo:          params.Ativo,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	m.rows[c.ID] = c
	m.nextID++
	return c, nil
}

func (m *memoryRepository) UpdateCustomer(ctx context.Context, params models.UpdateCustomerParams) (models.Customer, error) {
	if m.err != nil {
		return models.Customer{}, m.err
	}
	c, ok := m.rows[params.ID]
	if !ok {
		return models.Customer{}, sql.ErrNoRows
	}
	if m.emailInUse(params.Email, params.ID) {
		return models.Customer{}, ErrDuplicateEmail
	}

	c.Nome = params.Nome
	c.Email = params.Email
	c.Telefone = params.Telefone
	c.Endereco = params.Endereco
	c.Cidade = params.Cidade
	c.Estado = params.Estado
	c.Cep = params.Cep
	c.DataNascimento = params.DataNascimento
	c.Ativo = params.Ativo
	c.UpdatedAt = time.Now()
	m.rows[c.ID] = c
	return c, nil
}

func (m *memoryRepository) SetCustomerActive(ctx context.Context, params models.SetCustomerActiveParams) (models.Customer, error) {
	if m.err != nil {
		return models.Customer{}, m.err
	}
	c, ok := m.rows[params.ID]
	if !ok {
		return models.Customer{}, sql.ErrNoRows
	}
	c.Ativo = params.Ativo
	c.UpdatedAt = time.Now()
	m.rows[c.ID] = c
	return c, nil
}

func (m *memoryRepository) emailInUse(email string, exceptID int32) bool {
	for _, c := range m.rows {
		if c.Email == email && c.ID != exceptID {
			return true
		}
	}
	return false
}

func (m *memoryRepository) filter(name sql.NullString, ativo sql.NullBool) []models.Customer {
	var needle string
	if name.Valid {
		unescaped := strings.NewReplacer(`\\`, `\`, `\%`, `%`, `\_`, `_`).Replace(name.String)
		needle = strings.ToLower(unescaped)
	}

	matched := []models.Customer{}
	for _, c := range m.rows {
		if name.Valid && !strings.Contains(strings.ToLower(c.Nome), needle) {
			continue
		}
		if ativo.Valid && c.Ativo != ativo.Bool {
			continue
		}
		matched = append(matched, c)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Nome != matched[j].Nome {
			return matched[i].Nome < matched[j].Nome
		}
		return matched[i].ID < matched[j].ID
	})
	return matched
}

var _ Repository = (*memoryRepository)(nil)

type publishedEvent struct {
	eventType  string
	customerID int32
}

type mockPublisher struct {
	events []publishedEvent
	err    error
}

func (m *mockPublisher) PublishCustomerEvent(ctx context.Context, eventType string, customerID int32) error {
	m.events = append(m.events, publishedEvent{eventType: eventType, customerID: customerID})
	return m.err
}

var _ EventPublisher = (*mockPublisher)(nil)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func validPayload(nome, email string) CustomerPayload {
	return CustomerPayload{
		Nome:     strPtr(nome),
		Email:    strPtr(email),
		Telefone: strPtr("11999999999"),
	}
}
