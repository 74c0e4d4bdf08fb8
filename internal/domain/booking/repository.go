package booking

import (
	"context"

	"github.com/agendafacil/agenda-api/internal/models"
)

// Repository é a capacidade que o core exige do backend relacional.
// Datas circulam como "YYYY-MM-DD" e horas como "HH:MM": comparação
// lexicográfica ordena igual à cronológica nesses formatos.
//
// GetSettings, GetProfile e FindClientByNormalizedPhone devolvem
// (nil, nil) quando o registro não existe — ausência não é erro, e o
// core trata os dois casos de forma diferente (fail-open só vale
// para erro de backend).
type Repository interface {
	// -------- Company --------
	GetCompanyByID(
		ctx context.Context,
		id uint,
	) (*models.Company, error)

	GetCompanyBySlug(
		ctx context.Context,
		slug string,
	) (*models.Company, error)

	GetSettings(
		ctx context.Context,
		companyID uint,
	) (*models.CompanySettings, error)

	GetProfile(
		ctx context.Context,
		companyID uint,
	) (*models.Profile, error)

	// -------- Service --------
	GetService(
		ctx context.Context,
		companyID uint,
		serviceID uint,
	) (*models.Service, error)

	// -------- Client --------
	FindClientByNormalizedPhone(
		ctx context.Context,
		companyID uint,
		normalizedPhone string,
	) (*models.Client, error)

	UpsertClient(
		ctx context.Context,
		client *models.Client,
	) error

	// -------- Appointment (create / conflict) --------
	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// Agendamentos não cancelados da empresa no dia, ordenados por hora.
	ListAppointmentsForDate(
		ctx context.Context,
		companyID uint,
		date string,
	) ([]models.Appointment, error)

	// -------- Limit counting --------
	CountActiveFromDate(
		ctx context.Context,
		companyID uint,
		clientID uint,
		fromDate string,
	) (int64, error)

	CountNonCancelledInPeriod(
		ctx context.Context,
		companyID uint,
		clientID uint,
		fromDate string,
		toDate string,
	) (int64, error)

	// -------- Appointment (state change) --------
	GetAppointmentForCompany(
		ctx context.Context,
		appointmentID uint,
		companyID uint,
	) (*models.Appointment, error)

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// -------- Availability --------
	GetWorkingHours(
		ctx context.Context,
		companyID uint,
		weekday int,
	) (*models.WorkingHours, error)

	ListAppointmentsForPeriod(
		ctx context.Context,
		companyID uint,
		fromDate string,
		toDate string,
	) ([]models.Appointment, error)
}
