package customers

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/sangkips/customer-registry-service/internal/domains/customers/models"
)

const uniqueViolation = "23505"

type Repository interface {
	GetCustomer(ctx context.Context, id int32) (models.Customer, error)
	GetCustomerByEmail(ctx context.Context, email string) (models.Customer, error)
	ListCustomers(ctx context.Context, params models.ListCustomersParams) ([]models.Customer, error)
	CountCustomers(ctx context.Context, params models.CountCustomersParams) (int64, error)
	CreateCustomer(ctx context.Context, params models.CreateCustomerParams) (models.Customer, error)
	UpdateCustomer(ctx context.Context, params models.UpdateCustomerParams) (models.Customer, error)
	SetCustomerActive(ctx context.Context, params models.SetCustomerActiveParams) (models.Customer, error)
}

type repository struct {
	q *models.Queries
}

func NewRepository(db models.DBTX) Repository {
	return &repository{q: models.New(db)}
}

func (r *repository) GetCustomer(ctx context.Context, id int32) (models.Customer, error) {
	return r.q.GetCustomer(ctx, id)
}

func (r *repository) GetCustomerByEmail(ctx context.Context, email string) (models.Customer, error) {
	return r.q.GetCustomerByEmail(ctx, email)
}

func (r *repository) ListCustomers(ctx context.Context, params models.ListCustomersParams) ([]models.Customer, error) {
	return r.q.ListCustomers(ctx, params)
}

func (r *repository) CountCustomers(ctx context.Context, params models.CountCustomersParams) (int64, error) {
	return r.q.CountCustomers(ctx, params)
}

// CreateCustomer reports ErrDuplicateEmail when the unique index on email rejects the row.
func (r *repository) CreateCustomer(ctx context.Context, params models.CreateCustomerParams) (models.Customer, error) {
	customer, err := r.q.CreateCustomer(ctx, params)
	if isUniqueViolation(err) {
		return models.Customer{}, ErrDuplicateEmail
	}
	return customer, err
}

func (r *repository) UpdateCustomer(ctx context.Context, params models.UpdateCustomerParams) (models.Customer, error) {
	customer, err := r.q.UpdateCustomer(ctx, params)
	if isUniqueViolation(err) {
		return models.Customer{}, ErrDuplicateEmail
	}
	return customer, err
}

func (r *repository) SetCustomerActive(ctx context.Context, params models.SetCustomerActiveParams) (models.Customer, error) {
	return r.q.SetCustomerActive(ctx, params)
}

// isUniqueViolation understands both the pgx driver used by the server and
// lib/pq used by the integration tests.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation
	}

	return false
}
