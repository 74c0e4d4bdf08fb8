package models

import "time"

type Appointment struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	PublicID string `gorm:"size:36;uniqueIndex" json:"public_id"`

	CompanyID uint    `gorm:"index:idx_appointments_company_date" json:"company_id"`
	Company   Company `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	ClientID uint   `json:"client_id"`
	Client   Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"client"`

	ServiceID uint    `json:"service_id"`
	Service   Service `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"service"`

	// Dia e hora no calendário local da empresa. Mantidos em colunas
	// separadas: o índice parcial de unicidade e todas as checagens
	// de conflito trabalham no par (date, time) com precisão de minuto.
	AppointmentDate string `gorm:"size:10;index:idx_appointments_company_date" json:"appointment_date"` // YYYY-MM-DD
	AppointmentTime string `gorm:"size:8" json:"appointment_time"`                                      // HH:MM

	Status      string `gorm:"size:20;default:'scheduled'" json:"status"`
	DurationMin int    `json:"duration_min"`

	Notes       string     `gorm:"size:255" json:"notes"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
