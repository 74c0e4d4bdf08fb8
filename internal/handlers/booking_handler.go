package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agendafacil/agenda-api/internal/booking"
	"github.com/agendafacil/agenda-api/internal/httperr"
	"github.com/agendafacil/agenda-api/internal/middleware"
	"github.com/agendafacil/agenda-api/internal/phone"
)

// ======================================================
// PRÉ-CHECAGENS DE RESERVA
// ======================================================

// BookingHandler expõe as checagens de conflito e de limite como
// consulta avulsa, para o front desabilitar horários e avisar o
// cliente antes do submit. São consultivas: a mesma validação roda
// de novo dentro do create, e a constraint do banco decide empates.
type BookingHandler struct {
	validator *booking.Validator
	conflicts *booking.ConflictDetector
}

func NewBookingHandler(
	validator *booking.Validator,
	conflicts *booking.ConflictDetector,
) *BookingHandler {
	return &BookingHandler{
		validator: validator,
		conflicts: conflicts,
	}
}

func (h *BookingHandler) ValidateSlot(c *gin.Context) {
	companyID := c.MustGet(middleware.ContextCompanyID).(uint)

	dateStr := c.Query("date")
	timeStr := c.Query("time")

	if _, err := time.Parse("2006-01-02", dateStr); err != nil {
		httperr.BadRequest(c, "invalid_date", "Data inválida.")
		return
	}
	if timeStr == "" {
		httperr.BadRequest(c, "missing_time", "Hora obrigatória.")
		return
	}

	result := h.conflicts.ValidateSlot(c.Request.Context(), companyID, dateStr, timeStr)
	c.JSON(http.StatusOK, result)
}

func (h *BookingHandler) CheckConflict(c *gin.Context) {
	companyID := c.MustGet(middleware.ContextCompanyID).(uint)

	dateStr := c.Query("date")
	timeStr := c.Query("time")

	if _, err := time.Parse("2006-01-02", dateStr); err != nil {
		httperr.BadRequest(c, "invalid_date", "Data inválida.")
		return
	}
	if timeStr == "" {
		httperr.BadRequest(c, "missing_time", "Hora obrigatória.")
		return
	}

	result := h.conflicts.HasConflict(c.Request.Context(), companyID, dateStr, timeStr)
	c.JSON(http.StatusOK, result)
}

func (h *BookingHandler) ValidateLimits(c *gin.Context) {
	companyID := c.MustGet(middleware.ContextCompanyID).(uint)

	clientPhone := c.Query("phone")
	if len(phone.Normalize(clientPhone)) < 10 {
		httperr.BadRequest(c, "invalid_phone", "Telefone inválido.")
		return
	}

	decision := h.validator.ValidateBookingLimits(c.Request.Context(), companyID, clientPhone)
	c.JSON(http.StatusOK, decision)
}
