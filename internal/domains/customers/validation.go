package customers

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const dateLayout = "2006-01-02"

// emailPattern allows Unicode letters and RFC 5322 atom characters before the @.
// The domain needs a top-level label of at least two letters.
var emailPattern = regexp.MustCompile("^[\\p{L}\\p{N}!#$%&'*+/=?^_`{|}~.\\-]+" +
	"@(?:[\\p{L}\\p{N}](?:[\\p{L}\\p{N}\\-]*[\\p{L}\\p{N}])?\\.)+\\p{L}{2,}$")

// FieldError is a single violated rule on a single field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every rule a customer record violated.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// CustomerDraft is the full record about to be written, independent of the storage call.
type CustomerDraft struct {
	Nome           *string
	Email          *string
	Telefone       *string
	Endereco       *string
	Cidade         *string
	Estado         *string
	Cep            *string
	DataNascimento *string
	Ativo          bool
}

// ValidateCustomer runs every rule and returns one FieldError per violation,
// in field order. A nil result means the draft can be written.
func ValidateCustomer(d CustomerDraft) []FieldError {
	var errs []FieldError
	add := func(field, message string) {
		errs = append(errs, FieldError{Field: field, Message: message})
	}

	if d.Nome == nil {
		add("nome", "O nome é obrigatório")
	} else {
		if *d.Nome == "" {
			add("nome", "O nome é obrigatório")
		}
		if !lengthBetween(*d.Nome, 2, 100) {
			add("nome", "O nome deve ter entre 2 e 100 caracteres")
		}
	}

	if d.Email == nil {
		add("email", "O email é obrigatório")
	} else {
		if *d.Email == "" {
			add("email", "O email é obrigatório")
		}
		if !emailPattern.MatchString(*d.Email) {
			add("email", "Email deve ter um formato válido")
		}
		if !lengthBetween(*d.Email, 2, 150) {
			add("email", "O email deve ter entre 2 e 150 caracteres")
		}
	}

	if d.Telefone == nil {
		add("telefone", "O telefone é obrigatório")
	} else {
		if *d.Telefone == "" {
			add("telefone", "O telefone é obrigatório")
		}
		if !lengthBetween(*d.Telefone, 10, 20) {
			add("telefone", "O telefone deve ter entre 10 e 20 caracteres")
		}
	}

	if d.Endereco != nil && !lengthBetween(*d.Endereco, 0, 200) {
		add("endereco", "O endereço deve ter no máximo 200 caracteres")
	}
	if d.Cidade != nil && !lengthBetween(*d.Cidade, 0, 100) {
		add("cidade", "A cidade deve ter no máximo 100 caracteres")
	}
	if d.Estado != nil && !lengthBetween(*d.Estado, 2, 2) {
		add("estado", "O estado deve ter exatamente 2 caracteres")
	}
	if d.Cep != nil && !lengthBetween(*d.Cep, 8, 10) {
		add("cep", "O CEP deve ter entre 8 e 10 caracteres")
	}
	if d.DataNascimento != nil {
		if _, err := parseBirthDate(*d.DataNascimento); err != nil {
			add("dataNascimento", "Data de nascimento deve ser uma data válida")
		}
	}

	return errs
}

func lengthBetween(s string, min, max int) bool {
	n := utf8.RuneCountInString(s)
	return n >= min && n <= max
}

// parseBirthDate accepts a plain date or a full RFC 3339 timestamp, keeping only the date.
func parseBirthDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
