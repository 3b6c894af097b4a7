package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"kopimas-be/internal/catalog"
	"kopimas-be/internal/logger"
	"kopimas-be/internal/order"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func init() {
	// Money fields serialize as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

const genericErrorMessage = "Something went wrong!"

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, details ...string) {
	writeJSON(w, status, errorResponse{Error: msg, Details: details})
}

// writeServiceError maps domain errors onto the HTTP contract. Unrecognized
// errors are logged and hidden behind a generic 500 message.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var catalogValidation *catalog.ValidationError
	var orderValidation *order.ValidationError

	switch {
	case errors.As(err, &catalogValidation):
		writeError(w, http.StatusBadRequest, "validation error", catalogValidation.Details...)
	case errors.As(err, &orderValidation):
		writeError(w, http.StatusBadRequest, "validation error", orderValidation.Details...)
	case errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, order.ErrOrderItemNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, catalog.ErrProductReferenced):
		writeError(w, http.StatusConflict, err.Error())
	default:
		logger.FromCtx(r.Context()).Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, genericErrorMessage)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
