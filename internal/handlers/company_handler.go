package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/agendafacil/agenda-api/internal/httperr"
	"github.com/agendafacil/agenda-api/internal/middleware"
	"github.com/agendafacil/agenda-api/internal/models"
	"github.com/agendafacil/agenda-api/internal/timezone"
)

// SettingsInvalidator derruba entradas de cache da empresa depois de
// uma escrita. Fica nil quando o cache está desligado.
type SettingsInvalidator interface {
	Invalidate(ctx context.Context, companyID uint)
}

type CompanyHandler struct {
	db    *gorm.DB
	cache SettingsInvalidator
}

func NewCompanyHandler(db *gorm.DB, cache SettingsInvalidator) *CompanyHandler {
	return &CompanyHandler{db: db, cache: cache}
}

type UpdateCompanyRequest struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	Timezone *string `json:"timezone"`
}

type UpdateCompanySettingsRequest struct {
	MaxSimultaneousAppointments *int `json:"max_simultaneous_appointments"`
	MonthlyAppointmentsLimit    *int `json:"monthly_appointments_limit"`
	ClearMonthlyLimit           bool `json:"clear_monthly_limit"`
	MinAdvanceMinutes           *int `json:"min_advance_minutes"`
}

func (h *CompanyHandler) GetMeCompany(c *gin.Context) {
	companyID := c.MustGet(middleware.ContextCompanyID).(uint)

	var company models.Company
	if err := h.db.First(&company, companyID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "company_not_found", "Empresa não encontrada.")
			return
		}
		httperr.Internal(c, "failed_to_get_company", "Erro ao buscar dados da empresa.")
		return
	}

	var settings models.CompanySettings
	if err := h.db.Where("company_id = ?", companyID).First(&settings).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			httperr.Internal(c, "failed_to_get_settings", "Erro ao buscar configurações.")
			return
		}
		settings = models.CompanySettings{
			CompanyID:                   companyID,
			MaxSimultaneousAppointments: 3,
			MinAdvanceMinutes:           120,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"company":  company,
		"settings": settings,
	})
}

func (h *CompanyHandler) UpdateMeCompany(c *gin.Context) {
	companyID := c.MustGet(middleware.ContextCompanyID).(uint)

	var company models.Company
	if err := h.db.First(&company, companyID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "company_not_found", "Empresa não encontrada.")
			return
		}
		httperr.Internal(c, "failed_to_get_company", "Erro ao buscar dados da empresa.")
		return
	}

	var req UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos na requisição.")
		return
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			httperr.BadRequest(c, "invalid_name", "Nome não pode ser vazio.")
			return
		}
		company.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		company.Phone = *req.Phone
	}
	if req.Address != nil {
		company.Address = *req.Address
	}
	if req.Timezone != nil {
		if !timezone.IsValid(*req.Timezone) {
			httperr.BadRequest(c, "invalid_timezone", "Fuso horário inválido.")
			return
		}
		company.Timezone = *req.Timezone
	}

	if err := h.db.Save(&company).Error; err != nil {
		httperr.Internal(c, "failed_to_update_company", "Erro ao salvar dados da empresa.")
		return
	}

	c.JSON(http.StatusOK, company)
}

// UpdateMeSettings ajusta os limites de reserva da empresa. O limite
// mensal é opt-in: só clear_monthly_limit desliga um limite já posto.
func (h *CompanyHandler) UpdateMeSettings(c *gin.Context) {
	companyID := c.MustGet(middleware.ContextCompanyID).(uint)

	var req UpdateCompanySettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos na requisição.")
		return
	}

	if req.MaxSimultaneousAppointments != nil && *req.MaxSimultaneousAppointments < 1 {
		httperr.BadRequest(c, "invalid_max_simultaneous", "O limite simultâneo deve ser pelo menos 1.")
		return
	}
	if req.MonthlyAppointmentsLimit != nil && *req.MonthlyAppointmentsLimit < 1 {
		httperr.BadRequest(c, "invalid_monthly_limit", "O limite mensal deve ser pelo menos 1.")
		return
	}
	if req.MinAdvanceMinutes != nil && *req.MinAdvanceMinutes < 0 {
		httperr.BadRequest(c, "invalid_min_advance", "Antecedência mínima deve ser zero ou positiva (em minutos).")
		return
	}

	var settings models.CompanySettings
	err := h.db.
		Where(models.CompanySettings{CompanyID: companyID}).
		Attrs(models.CompanySettings{
			MaxSimultaneousAppointments: 3,
			MinAdvanceMinutes:           120,
		}).
		FirstOrCreate(&settings).Error
	if err != nil {
		httperr.Internal(c, "failed_to_get_settings", "Erro ao buscar configurações.")
		return
	}

	if req.MaxSimultaneousAppointments != nil {
		settings.MaxSimultaneousAppointments = *req.MaxSimultaneousAppointments
	}
	if req.ClearMonthlyLimit {
		settings.MonthlyAppointmentsLimit = nil
	} else if req.MonthlyAppointmentsLimit != nil {
		settings.MonthlyAppointmentsLimit = req.MonthlyAppointmentsLimit
	}
	if req.MinAdvanceMinutes != nil {
		settings.MinAdvanceMinutes = *req.MinAdvanceMinutes
	}

	if err := h.db.Save(&settings).Error; err != nil {
		httperr.Internal(c, "failed_to_update_settings", "Erro ao salvar configurações.")
		return
	}

	if h.cache != nil {
		h.cache.Invalidate(c.Request.Context(), companyID)
	}

	c.JSON(http.StatusOK, settings)
}
