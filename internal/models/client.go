package models

import "time"

// Cliente simples, sem login, vinculado à empresa. A identidade é a
// chave NormalizedPhone: dois formatos do mesmo número precisam cair
// no mesmo registro (índice único em company_id + normalized_phone).
type Client struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CompanyID uint `gorm:"uniqueIndex:idx_clients_company_phone" json:"company_id"`

	Name            string `gorm:"size:100;not null" json:"name"`
	Phone           string `gorm:"size:20" json:"phone"`
	NormalizedPhone string `gorm:"size:20;uniqueIndex:idx_clients_company_phone" json:"normalized_phone"`
	Email           string `gorm:"size:100" json:"email"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
