package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/example/storefront/internal/apperr"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Money goes over the wire as JSON numbers. Decoding accepts both forms.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Envelope is the body of every JSON response.
type Envelope struct {
	Status  int                 `json:"status"`
	Error   bool                `json:"error"`
	Message string              `json:"message"`
	Data    any                 `json:"data"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
}

var errInvalidBody = apperr.Validation("Invalid request body")

func respondJSON(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

// respondError maps err onto its status. Unclassified errors are logged and
// reported as a generic server error.
func respondError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	kind := apperr.KindOf(err)
	status := kind.Status()
	if kind == apperr.KindInternal || kind == apperr.KindUpstream {
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{
		Status:  status,
		Error:   true,
		Message: apperr.MessageOf(err),
		Errors:  apperr.FieldsOf(err),
	})
}

// decodeJSON reads a JSON body into dst. An empty body decodes to the zero
// value so handlers report missing fields rather than a parse error.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return errInvalidBody.Wrap(err)
	}
	return nil
}
