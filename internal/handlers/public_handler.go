package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/agendafacil/agenda-api/internal/booking"
	domain "github.com/agendafacil/agenda-api/internal/domain/booking"
	"github.com/agendafacil/agenda-api/internal/httperr"
	"github.com/agendafacil/agenda-api/internal/models"
	"github.com/agendafacil/agenda-api/internal/usecase/appointment"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

// PublicHandler serve o fluxo de reserva pelo link público da
// empresa (slug). Não há login: o cliente é identificado pelo
// telefone, e as mesmas checagens do painel valem aqui.
type PublicHandler struct {
	db           *gorm.DB
	repo         domain.Repository
	create       *appointment.CreateAppointment
	availability *appointment.GetAvailability
	conflicts    *booking.ConflictDetector
	validator    *booking.Validator
}

func NewPublicHandler(
	db *gorm.DB,
	repo domain.Repository,
	create *appointment.CreateAppointment,
	availability *appointment.GetAvailability,
	conflicts *booking.ConflictDetector,
	validator *booking.Validator,
) *PublicHandler {
	return &PublicHandler{
		db:           db,
		repo:         repo,
		create:       create,
		availability: availability,
		conflicts:    conflicts,
		validator:    validator,
	}
}

////////////////////////////////////////////////////////
// DTOs
////////////////////////////////////////////////////////

type PublicCreateAppointmentRequest struct {
	ClientName  string `json:"client_name" binding:"required"`
	ClientPhone string `json:"client_phone" binding:"required"`
	ClientEmail string `json:"client_email"`
	ServiceID   uint   `json:"service_id" binding:"required"`
	Date        string `json:"date" binding:"required"` // YYYY-MM-DD
	Time        string `json:"time" binding:"required"` // HH:mm
	Notes       string `json:"notes"`
}

func (h *PublicHandler) companyBySlug(c *gin.Context) *models.Company {
	slug := c.Param("slug")

	company, err := h.repo.GetCompanyBySlug(c.Request.Context(), slug)
	if err != nil || company == nil {
		httperr.NotFound(c, "company_not_found", "Empresa não encontrada.")
		return nil
	}
	return company
}

////////////////////////////////////////////////////////
// SERVICES
////////////////////////////////////////////////////////

func (h *PublicHandler) ListServices(c *gin.Context) {
	company := h.companyBySlug(c)
	if company == nil {
		return
	}

	category := strings.TrimSpace(strings.ToLower(c.Query("category")))
	query := strings.TrimSpace(strings.ToLower(c.Query("query")))

	q := h.db.
		Where("company_id = ? AND active = true", company.ID)

	if category != "" {
		q = q.Where("LOWER(category) = ?", category)
	}

	if query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var services []models.Service
	if err := q.Order("id ASC").Find(&services).Error; err != nil {
		httperr.Internal(c, "failed_to_list_services", "Erro ao listar serviços.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"company":  company,
		"services": services,
	})
}

////////////////////////////////////////////////////////
// AVAILABILITY
////////////////////////////////////////////////////////

func (h *PublicHandler) Availability(c *gin.Context) {
	company := h.companyBySlug(c)
	if company == nil {
		return
	}

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

	slots, err := h.availability.Execute(
		c.Request.Context(),
		domain.AvailabilityInput{
			CompanyID: company.ID,
			ServiceID: uint(serviceID),
			Date:      dateStr,
		},
	)
	if err != nil {
		if httperr.IsBusiness(err, "service_not_found") {
			httperr.BadRequest(c, "service_not_found", "Serviço inválido.")
			return
		}
		if httperr.IsBusiness(err, "invalid_date") {
			httperr.BadRequest(c, "invalid_date", "Data inválida.")
			return
		}

		httperr.Internal(c, "availability_failed", "Erro ao calcular horários.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":  dateStr,
		"slots": slots,
	})
}

////////////////////////////////////////////////////////
// PRÉ-CHECAGEM
////////////////////////////////////////////////////////

// ValidateBooking roda conflito + limites antes do submit, para o
// front público avisar cedo. Consultiva: o create revalida tudo.
func (h *PublicHandler) ValidateBooking(c *gin.Context) {
	company := h.companyBySlug(c)
	if company == nil {
		return
	}

	dateStr := c.Query("date")
	timeStr := c.Query("time")
	clientPhone := c.Query("phone")

	if dateStr == "" || timeStr == "" {
		httperr.BadRequest(c, "missing_params", "Data e hora obrigatórias.")
		return
	}

	slot := h.conflicts.ValidateSlot(c.Request.Context(), company.ID, dateStr, timeStr)

	resp := gin.H{"slot": slot}
	if clientPhone != "" {
		resp["limits"] = h.validator.ValidateBookingLimits(c.Request.Context(), company.ID, clientPhone)
	}

	c.JSON(http.StatusOK, resp)
}

////////////////////////////////////////////////////////
// CREATE APPOINTMENT (PÚBLICO → REUSA O USE CASE)
////////////////////////////////////////////////////////

func (h *PublicHandler) CreateAppointment(c *gin.Context) {
	company := h.companyBySlug(c)
	if company == nil {
		return
	}

	var req PublicCreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	ap, err := h.create.Execute(
		c.Request.Context(),
		appointment.CreateAppointmentInput{
			CompanyID:   company.ID,
			ClientName:  req.ClientName,
			ClientPhone: req.ClientPhone,
			ClientEmail: req.ClientEmail,
			ServiceID:   req.ServiceID,
			Date:        req.Date,
			Time:        req.Time,
			Notes:       req.Notes,
		},
	)
	if err != nil {
		mapBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ap)
}
