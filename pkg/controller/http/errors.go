package http

import (
	"errors"
	"net/http"

	"github.com/stoa-lab/salescredit/pkg/usecase"
	"github.com/stoa-lab/salescredit/pkg/utils/errutil"
)

// handleError maps use case sentinels onto response status codes and
// writes the error response. Anything unmapped is an internal failure.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, usecase.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, usecase.ErrClaimNotFound),
		errors.Is(err, usecase.ErrEntryNotFound):
		status = http.StatusNotFound
	case errors.Is(err, usecase.ErrDuplicateClaim),
		errors.Is(err, usecase.ErrAlreadyReviewed),
		errors.Is(err, usecase.ErrAlreadyRedeemed):
		status = http.StatusConflict
	}

	errutil.HandleHTTP(r.Context(), w, err, status)
}
