package models

import "time"

// Configuração de agendamento da empresa. MonthlyAppointmentsLimit
// nulo significa "sem limite mensal" (recurso opt-in).
type CompanySettings struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	CompanyID uint    `gorm:"uniqueIndex" json:"company_id"`
	Company   Company `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	MaxSimultaneousAppointments int  `gorm:"default:3" json:"max_simultaneous_appointments"`
	MonthlyAppointmentsLimit    *int `json:"monthly_appointments_limit"`
	MinAdvanceMinutes           int  `gorm:"default:120" json:"min_advance_minutes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
