package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	profitUC "lendingops-backend/internal/usecase/profit"
	"lendingops-backend/pkg/logger"
)

type Handler struct {
	profit *profitUC.Usecase
	log    *logger.Logger
}

func NewHandler(profit *profitUC.Usecase, log *logger.Logger) *Handler {
	return &Handler{profit: profit, log: log}
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// Profit serves the portfolio snapshot; ?months=N sets the monthly series length.
func (h *Handler) Profit(c echo.Context) error {
	months := 0
	if s := c.QueryParam("months"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 120 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "months must be an integer between 1 and 120"})
		}
		months = n
	}
	out, err := h.profit.Snapshot(c.Request().Context(), months)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}
