package models

import (
	"context"
	"database/sql"
)

const customerColumns = `id, nome, email, telefone, endereco, cidade, estado, cep, data_nascimento, ativo, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCustomer(row rowScanner) (Customer, error) {
	var i Customer
	err := row.Scan(
		&i.ID,
		&i.Nome,
		&i.Email,
		&i.Telefone,
		&i.Endereco,
		&i.Cidade,
		&i.Estado,
		&i.Cep,
		&i.DataNascimento,
		&i.Ativo,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getCustomer = `SELECT ` + customerColumns + `
FROM clientes
WHERE id = $1`

func (q *Queries) GetCustomer(ctx context.Context, id int32) (Customer, error) {
	return scanCustomer(q.db.QueryRowContext(ctx, getCustomer, id))
}

const getCustomerByEmail = `SELECT ` + customerColumns + `
FROM clientes
WHERE email = $1`

func (q *Queries) GetCustomerByEmail(ctx context.Context, email string) (Customer, error) {
	return scanCustomer(q.db.QueryRowContext(ctx, getCustomerByEmail, email))
}

const listCustomers = `SELECT ` + customerColumns + `
FROM clientes
WHERE ($1::text IS NULL OR nome ILIKE '%' || $1 || '%' ESCAPE '\')
  AND ($2::boolean IS NULL OR ativo = $2)
ORDER BY nome ASC, id ASC
LIMIT $3 OFFSET $4`

// ListCustomersParams.Name is an ILIKE fragment; callers escape wildcards.
type ListCustomersParams struct {
	Name   sql.NullString
	Ativo  sql.NullBool
	Limit  int32
	Offset int32
}

func (q *Queries) ListCustomers(ctx context.Context, arg ListCustomersParams) ([]Customer, error) {
	rows, err := q.db.QueryContext(ctx, listCustomers,
		arg.Name,
		arg.Ativo,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Customer{}
	for rows.Next() {
		i, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countCustomers = `SELECT COUNT(*)
FROM clientes
WHERE ($1::text IS NULL OR nome ILIKE '%' || $1 || '%' ESCAPE '\')
  AND ($2::boolean IS NULL OR ativo = $2)`

type CountCustomersParams struct {
	Name  sql.NullString
	Ativo sql.NullBool
}

func (q *Queries) CountCustomers(ctx context.Context, arg CountCustomersParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countCustomers, arg.Name, arg.Ativo)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createCustomer = `INSERT INTO clientes (
    nome, email, telefone, endereco, cidade, estado, cep, data_nascimento, ativo
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9
)
RETURNING ` + customerColumns

type CreateCustomerParams struct {
	Nome           string
	Email          string
	Telefone       string
	Endereco       sql.NullString
	Cidade         sql.NullString
	Estado         sql.NullString
	Cep            sql.NullString
	DataNascimento sql.NullTime
	Ativo          bool
}

func (q *Queries) CreateCustomer(ctx context.Context, arg CreateCustomerParams) (Customer, error) {
	row := q.db.QueryRowContext(ctx, createCustomer,
		arg.Nome,
		arg.Email,
		arg.Telefone,
		arg.Endereco,
		arg.Cidade,
		arg.Estado,
		arg.Cep,
		arg.DataNascimento,
		arg.Ativo,
	)
	return scanCustomer(row)
}

const updateCustomer = `UPDATE clientes
SET nome = $2,
    email = $3,
    telefone = $4,
    endereco = $5,
    cidade = $6,
    estado = $7,
    cep = $8,
    data_nascimento = $9,
    ativo = $10,
    updated_at = NOW()
WHERE id = $1
RETURNING ` + customerColumns

type UpdateCustomerParams struct {
	ID             int32
	Nome           string
	Email          string
	Telefone       string
	Endereco       sql.NullString
	Cidade         sql.NullString
	Estado         sql.NullString
	Cep            sql.NullString
	DataNascimento sql.NullTime
	Ativo          bool
}

func (q *Queries) UpdateCustomer(ctx context.Context, arg UpdateCustomerParams) (Customer, error) {
	row := q.db.QueryRowContext(ctx, updateCustomer,
		arg.ID,
		arg.Nome,
		arg.Email,
		arg.Telefone,
		arg.Endereco,
		arg.Cidade,
		arg.Estado,
		arg.Cep,
		arg.DataNascimento,
		arg.Ativo,
	)
	return scanCustomer(row)
}

const setCustomerActive = `UPDATE clientes
SET ativo = $2,
    updated_at = NOW()
WHERE id = $1
RETURNING ` + customerColumns

type SetCustomerActiveParams struct {
	ID    int32
	Ativo bool
}

func (q *Queries) SetCustomerActive(ctx context.Context, arg SetCustomerActiveParams) (Customer, error) {
	return scanCustomer(q.db.QueryRowContext(ctx, setCustomerActive, arg.ID, arg.Ativo))
}

const deleteAllCustomers = `TRUNCATE clientes RESTART IDENTITY`

// DeleteAllCustomers wipes the table; only the seed command uses it.
func (q *Queries) DeleteAllCustomers(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllCustomers)
	return err
}
