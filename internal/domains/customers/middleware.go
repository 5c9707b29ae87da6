package customers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"regexp"

	"github.com/sangkips/customer-registry-service/internal/handlers"
)

const maxBodyBytes = 1 << 20

// basicEmailPattern is deliberately looser than the write-time check.
var basicEmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// requireCustomerFields rejects create requests missing nome, email or
// telefone, or carrying an obviously malformed email, before the handler runs.
// The body is handed on unchanged.
func requireCustomerFields(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			handlers.RespondWithError(w, http.StatusBadRequest, msgInvalidBody)
			return
		}
		r.Body.Close()

		var req struct {
			Nome     *string `json:"nome"`
			Email    *string `json:"email"`
			Telefone *string `json:"telefone"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			handlers.RespondWithError(w, http.StatusBadRequest, msgInvalidBody)
			return
		}

		if isBlank(req.Nome) || isBlank(req.Email) || isBlank(req.Telefone) {
			handlers.RespondWithError(w, http.StatusBadRequest, msgRequiredFields)
			return
		}

		if !basicEmailPattern.MatchString(*req.Email) {
			handlers.RespondWithError(w, http.StatusBadRequest, msgInvalidEmailFormat)
			return
		}

		r.Body = io.NopCloser(bytes.NewReader(body))
		r.ContentLength = int64(len(body))
		next.ServeHTTP(w, r)
	})
}

func isBlank(s *string) bool {
	return s == nil || *s == ""
}
