package rest

import (
	"errors"
	"net/http"

	"tienda-be/internal/category"
	"tienda-be/internal/client"
	"tienda-be/internal/logger"
	"tienda-be/internal/order"
	"tienda-be/internal/product"
	"tienda-be/internal/user"

	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeError translates domain errors into HTTP status codes. Unknown errors
// are logged and answered with a generic 500 so internals never leak.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var stockErr *order.InsufficientStockError
	var transErr *order.InvalidTransitionError

	switch {
	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, category.ErrCategoryNotFound),
		errors.Is(err, client.ErrClientNotFound),
		errors.Is(err, user.ErrAccountNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})

	case errors.As(err, &stockErr),
		errors.As(err, &transErr),
		errors.Is(err, client.ErrEmailExists),
		errors.Is(err, user.ErrEmailExists),
		errors.Is(err, user.ErrUsernameExists):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})

	case errors.Is(err, order.ErrEmptyOrder),
		errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, order.ErrUnknownStatus),
		errors.Is(err, category.ErrNameRequired),
		errors.Is(err, client.ErrNameRequired),
		errors.Is(err, product.ErrNameRequired),
		errors.Is(err, product.ErrInvalidPrice),
		errors.Is(err, product.ErrInvalidStock),
		errors.Is(err, errBadID):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})

	case errors.Is(err, user.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})

	default:
		logger.FromCtx(r.Context()).Error("unhandled error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
