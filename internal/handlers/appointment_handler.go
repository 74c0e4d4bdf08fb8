package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/agendafacil/agenda-api/internal/domain/booking"
	"github.com/agendafacil/agenda-api/internal/httperr"
	"github.com/agendafacil/agenda-api/internal/httpresp"
	"github.com/agendafacil/agenda-api/internal/middleware"
	"github.com/agendafacil/agenda-api/internal/models"
	"github.com/agendafacil/agenda-api/internal/realtime"
	"github.com/agendafacil/agenda-api/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	create       *appointment.CreateAppointment
	transition   *appointment.Transition
	list         *appointment.ListAppointments
	availability *appointment.GetAvailability
	listener     *realtime.Listener
}

func NewAppointmentHandler(
	create *appointment.CreateAppointment,
	transition *appointment.Transition,
	list *appointment.ListAppointments,
	availability *appointment.GetAvailability,
	listener *realtime.Listener,
) *AppointmentHandler {
	return &AppointmentHandler{
		create:       create,
		transition:   transition,
		list:         list,
		availability: availability,
		listener:     listener,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	ClientName  string `json:"client_name" binding:"required"`
	ClientPhone string `json:"client_phone" binding:"required"`
	ClientEmail string `json:"client_email"`
	ServiceID   uint   `json:"service_id" binding:"required"`
	Date        string `json:"date" binding:"required"` // YYYY-MM-DD
	Time        string `json:"time" binding:"required"` // HH:mm
	Notes       string `json:"notes"`
}

// ======================================================
// ERRO DE NEGÓCIO → HTTP
// ======================================================

var bookingErrorMessages = map[string]string{
	"company_not_found":          "Empresa não encontrada.",
	"invalid_date_or_time":       "Data ou hora inválida.",
	"invalid_date":               "Data inválida.",
	"too_soon":                   "Horário muito próximo. Agende com mais antecedência.",
	"service_not_found":          "Serviço não encontrado.",
	"outside_working_hours":      "Fora do horário de atendimento.",
	"simultaneous_limit_reached": "Limite de agendamentos ativos atingido.",
	"monthly_limit_reached":      "Limite mensal de agendamentos atingido.",
	"time_conflict":              "Conflito de horário.",
	"appointment_not_found":      "Agendamento não encontrado.",
	"invalid_state":              "Transição de status inválida.",
}

func mapBookingError(c *gin.Context, err error) {
	var be httperr.BusinessError
	if !errors.As(err, &be) {
		httperr.Internal(c, "internal_error", "Erro interno.")
		return
	}

	msg := be.Message
	if msg == "" {
		msg = bookingErrorMessages[be.Code]
	}

	switch be.Code {
	case "company_not_found", "appointment_not_found":
		httperr.NotFound(c, be.Code, msg)
	default:
		httperr.BadRequest(c, be.Code, msg)
	}
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	companyID := c.MustGet(middleware.ContextCompanyID).(uint)

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	ap, err := h.create.Execute(c.Request.Context(), appointment.CreateAppointmentInput{
		CompanyID:   companyID,
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
		ClientEmail: req.ClientEmail,
		ServiceID:   req.ServiceID,
		Date:        req.Date,
		Time:        req.Time,
		Notes:       req.Notes,
		CreatedBy:   &userID,
	})
	if err != nil {
		mapBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ap)
}

// ======================================================
// LIST
// ======================================================

func (h *AppointmentHandler) ListByDate(c *gin.Context) {
	companyID := c.MustGet(middleware.ContextCompanyID).(uint)

	dateStr := c.Query("date")
	if dateStr == "" {
		httperr.BadRequest(c, "missing_date", "Data obrigatória.")
		return
	}

	aps, err := h.list.ByDate(c.Request.Context(), companyID, dateStr)
	if err != nil {
		mapBookingError(c, err)
		return
	}

	httpresp.List(c, aps)
}

func (h *AppointmentHandler) ListByMonth(c *gin.Context) {
	companyID := c.MustGet(middleware.ContextCompanyID).(uint)

	yearStr := c.Query("year")
	monthStr := c.Query("month")
	if yearStr == "" || monthStr == "" {
		httperr.BadRequest(c, "missing_year_or_month", "Ano e mês são obrigatórios.")
		return
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 2000 || year > 2100 {
		httperr.BadRequest(c, "invalid_year", "Ano inválido.")
		return
	}

	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		httperr.BadRequest(c, "invalid_month", "Mês inválido.")
		return
	}

	aps, err := h.list.ByMonth(c.Request.Context(), companyID, year, month)
	if err != nil {
		mapBookingError(c, err)
		return
	}

	httpresp.List(c, aps)
}

// ======================================================
// AVAILABILITY (PAINEL)
// ======================================================

func (h *AppointmentHandler) Availability(c *gin.Context) {
	companyID := c.MustGet(middleware.ContextCompanyID).(uint)

	dateStr := c.Query("date")
	serviceIDStr := c.Query("service_id")
	if dateStr == "" || serviceIDStr == "" {
		httperr.BadRequest(c, "missing_params", "Data e serviço obrigatórios.")
		return
	}

	serviceID, err := strconv.ParseUint(serviceIDStr, 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_service_id", "Serviço inválido.")
		return
	}

	slots, err := h.availability.Execute(c.Request.Context(), domain.AvailabilityInput{
		CompanyID: companyID,
		ServiceID: uint(serviceID),
		Date:      dateStr,
	})
	if err != nil {
		mapBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":  dateStr,
		"slots": slots,
	})
}

// ======================================================
// TRANSIÇÕES DE STATUS
// ======================================================

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	h.applyTransition(c, h.transition.Cancel)
}

func (h *AppointmentHandler) Confirm(c *gin.Context) {
	h.applyTransition(c, h.transition.Confirm)
}

func (h *AppointmentHandler) Start(c *gin.Context) {
	h.applyTransition(c, h.transition.Start)
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	h.applyTransition(c, h.transition.Complete)
}

func (h *AppointmentHandler) applyTransition(
	c *gin.Context,
	fn func(ctx context.Context, companyID uint, userID *uint, appointmentID uint) (*models.Appointment, error),
) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	companyID := c.MustGet(middleware.ContextCompanyID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_appointment_id", "Agendamento inválido.")
		return
	}

	ap, err := fn(c.Request.Context(), companyID, &userID, uint(id))
	if err != nil {
		mapBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, ap)
}

// ======================================================
// STREAM (SSE)
// ======================================================

// Stream mantém o painel do dia sincronizado: cada mudança nos
// agendamentos da empresa naquela data gera um evento "change" e o
// front refaz a consulta. Mudanças em rajada colapsam num único
// evento (canal com buffer 1).
func (h *AppointmentHandler) Stream(c *gin.Context) {
	companyID := c.MustGet(middleware.ContextCompanyID).(uint)

	dateStr := c.Query("date")
	if _, err := time.Parse("2006-01-02", dateStr); err != nil {
		httperr.BadRequest(c, "invalid_date", "Data inválida.")
		return
	}

	if h.listener == nil {
		httperr.Write(c, http.StatusServiceUnavailable, "realtime_unavailable", "Atualizações em tempo real indisponíveis.")
		return
	}

	changes := make(chan struct{}, 1)
	unsubscribe := h.listener.Subscribe(companyID, dateStr, func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case <-changes:
			c.SSEvent("change", gin.H{"date": dateStr})
			return true
		case <-keepalive.C:
			c.SSEvent("ping", "keepalive")
			return true
		}
	})
}
