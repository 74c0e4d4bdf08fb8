package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/agendafacil/agenda-api/internal/httperr"
	"github.com/agendafacil/agenda-api/internal/httpresp"
	"github.com/agendafacil/agenda-api/internal/middleware"
	"github.com/agendafacil/agenda-api/internal/models"
	"github.com/agendafacil/agenda-api/internal/phone"
)

type ClientHandler struct {
	db *gorm.DB
}

func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{db: db}
}

// ======================================================
// LIST CLIENTS (PAINEL)
// ======================================================
func (h *ClientHandler) List(c *gin.Context) {
	companyID := c.MustGet(middleware.ContextCompanyID).(uint)

	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	q := h.db.Where("company_id = ?", companyID)

	if query != "" {
		like := "%" + query + "%"
		// busca por telefone compara na forma normalizada, para o
		// mesmo número ser achado em qualquer formatação digitada.
		// Sem dígito nenhum na busca a forma normalizada é vazia e o
		// LIKE casaria com todo mundo, então a cláusula só entra
		// quando há dígitos.
		if normalized := phone.Normalize(query); normalized != "" {
			q = q.Where(
				"LOWER(name) LIKE ? OR normalized_phone LIKE ? OR LOWER(email) LIKE ?",
				like, "%"+normalized+"%", like,
			)
		} else {
			q = q.Where(
				"LOWER(name) LIKE ? OR LOWER(email) LIKE ?",
				like, like,
			)
		}
	}

	var clients []models.Client
	if err := q.
		Order("created_at DESC").
		Find(&clients).Error; err != nil {

		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed_to_list_clients",
		})
		return
	}

	httpresp.List(c, clients)
}

// ======================================================
// LOOKUP POR TELEFONE
// ======================================================

// Lookup resolve um telefone em qualquer formatação para o registro
// único do cliente da empresa.
func (h *ClientHandler) Lookup(c *gin.Context) {
	companyID := c.MustGet(middleware.ContextCompanyID).(uint)

	raw := c.Query("phone")
	normalized := phone.Normalize(raw)
	if len(normalized) < 10 {
		httperr.BadRequest(c, "invalid_phone", "Telefone inválido.")
		return
	}

	var client models.Client
	err := h.db.
		Where("company_id = ? AND normalized_phone = ?", companyID, normalized).
		First(&client).Error

	if err == gorm.ErrRecordNotFound {
		httperr.NotFound(c, "client_not_found", "Cliente não encontrado.")
		return
	}
	if err != nil {
		httperr.Internal(c, "failed_to_lookup_client", "Erro ao buscar cliente.")
		return
	}

	c.JSON(http.StatusOK, client)
}
