package models

import (
	"database/sql"
	"time"
)

// Customer mirrors a row of the clientes table.
type Customer struct {
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
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
