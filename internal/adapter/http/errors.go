package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"lendingops-backend/internal/domain/inquiry"
	"lendingops-backend/internal/domain/investment"
	"lendingops-backend/internal/domain/ledger"
	"lendingops-backend/internal/domain/loan"
	"lendingops-backend/internal/domain/pipeline"
	"lendingops-backend/internal/domain/proposal"
	"lendingops-backend/internal/domain/schedule"
	"lendingops-backend/pkg/logger"
)

var statusByErr = []struct {
	err    error
	status int
}{
	{inquiry.ErrNotFound, http.StatusNotFound},
	{proposal.ErrNotFound, http.StatusNotFound},
	{loan.ErrNotFound, http.StatusNotFound},
	{investment.ErrNotFound, http.StatusNotFound},

	{inquiry.ErrStaleState, http.StatusConflict},
	{proposal.ErrOpenProposalExists, http.StatusConflict},
	{proposal.ErrNotOpen, http.StatusConflict},
	{proposal.ErrAlreadyAccepted, http.StatusConflict},
	{pipeline.ErrProposalNotAccepted, http.StatusConflict},

	{inquiry.ErrInvalidTransition, http.StatusUnprocessableEntity},
	{pipeline.ErrMissingApprovalTerms, http.StatusUnprocessableEntity},
	{proposal.ErrInvalidTerms, http.StatusUnprocessableEntity},
	{schedule.ErrInvalidInput, http.StatusUnprocessableEntity},
	{ledger.ErrInvalidRecord, http.StatusUnprocessableEntity},
	{loan.ErrScheduleEntry, http.StatusUnprocessableEntity},
	{investment.ErrScheduleEntry, http.StatusUnprocessableEntity},
}

// StatusOf maps a usecase error onto an HTTP status; unknown errors are 500.
func StatusOf(err error) int {
	for _, m := range statusByErr {
		if errors.Is(err, m.err) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

// fail writes the error response for err. Internal errors are logged and not echoed to the client.
func fail(c echo.Context, log *logger.Logger, err error) error {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).WithField("path", c.Path()).Error("request failed")
		return c.JSON(status, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(status, ErrorResponse{Error: err.Error()})
}

// bindAndValidate is the shared request prologue: 400 on a bad body, 422 on failed validation.
func bindAndValidate(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}
