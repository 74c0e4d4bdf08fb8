package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/agendafacil/agenda-api/internal/domain/booking"
	"github.com/agendafacil/agenda-api/internal/models"
)

type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

// --------------------------------------------------
// Company
// --------------------------------------------------

func (r *BookingGormRepository) GetCompanyByID(
	ctx context.Context,
	id uint,
) (*models.Company, error) {

	var company models.Company
	if err := r.db.WithContext(ctx).First(&company, id).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *BookingGormRepository) GetCompanyBySlug(
	ctx context.Context,
	slug string,
) (*models.Company, error) {

	var company models.Company
	if err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&company).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *BookingGormRepository) GetSettings(
	ctx context.Context,
	companyID uint,
) (*models.CompanySettings, error) {

	var settings models.CompanySettings
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		First(&settings).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *BookingGormRepository) GetProfile(
	ctx context.Context,
	companyID uint,
) (*models.Profile, error) {

	var profile models.Profile
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		First(&profile).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// --------------------------------------------------
// Service
// --------------------------------------------------

func (r *BookingGormRepository) GetService(
	ctx context.Context,
	companyID uint,
	serviceID uint,
) (*models.Service, error) {

	var service models.Service
	if err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", serviceID, companyID).
		First(&service).Error; err != nil {
		return nil, err
	}
	return &service, nil
}

// --------------------------------------------------
// Client
// --------------------------------------------------

func (r *BookingGormRepository) FindClientByNormalizedPhone(
	ctx context.Context,
	companyID uint,
	normalizedPhone string,
) (*models.Client, error) {

	var client models.Client
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND normalized_phone = ?", companyID, normalizedPhone).
		First(&client).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// UpsertClient grava pelo par (company_id, normalized_phone): dois
// formatos do mesmo número nunca criam duas identidades. Em colisão,
// atualiza nome/telefone-cru/email do registro existente.
func (r *BookingGormRepository) UpsertClient(
	ctx context.Context,
	client *models.Client,
) error {

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "company_id"},
				{Name: "normalized_phone"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"name", "phone", "email", "updated_at"}),
		}).
		Create(client).Error
}

// --------------------------------------------------
// Appointment (create / conflict data)
// --------------------------------------------------

func (r *BookingGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).Create(ap).Error
}

func (r *BookingGormRepository) ListAppointmentsForDate(
	ctx context.Context,
	companyID uint,
	date string,
) ([]models.Appointment, error) {

	var aps []models.Appointment
	if err := r.db.WithContext(ctx).
		Where(
			"company_id = ? AND appointment_date = ? AND status <> ?",
			companyID, date, "cancelled",
		).
		Order("appointment_time ASC").
		Find(&aps).Error; err != nil {
		return nil, err
	}

	return aps, nil
}

// --------------------------------------------------
// Limit counting
// --------------------------------------------------

func (r *BookingGormRepository) CountActiveFromDate(
	ctx context.Context,
	companyID uint,
	clientID uint,
	fromDate string,
) (int64, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where(
			"company_id = ? AND client_id = ? AND status IN ? AND appointment_date >= ?",
			companyID, clientID, domain.ActiveStatuses, fromDate,
		).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func (r *BookingGormRepository) CountNonCancelledInPeriod(
	ctx context.Context,
	companyID uint,
	clientID uint,
	fromDate string,
	toDate string,
) (int64, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where(
			"company_id = ? AND client_id = ? AND status <> ? AND appointment_date >= ? AND appointment_date < ?",
			companyID, clientID, "cancelled", fromDate, toDate,
		).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

// --------------------------------------------------
// Appointment (state change)
// --------------------------------------------------

func (r *BookingGormRepository) GetAppointmentForCompany(
	ctx context.Context,
	appointmentID uint,
	companyID uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", appointmentID, companyID).
		First(&ap).Error; err != nil {
		return nil, err
	}

	return &ap, nil
}

func (r *BookingGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).Save(ap).Error
}

// --------------------------------------------------
// Availability
// --------------------------------------------------

func (r *BookingGormRepository) GetWorkingHours(
	ctx context.Context,
	companyID uint,
	weekday int,
) (*models.WorkingHours, error) {

	var wh models.WorkingHours
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND weekday = ?", companyID, weekday).
		First(&wh).Error; err != nil {
		return nil, err
	}

	return &wh, nil
}

func (r *BookingGormRepository) ListAppointmentsForPeriod(
	ctx context.Context,
	companyID uint,
	fromDate string,
	toDate string,
) ([]models.Appointment, error) {

	var aps []models.Appointment

	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Service").
		Where(
			"company_id = ? AND appointment_date >= ? AND appointment_date < ?",
			companyID, fromDate, toDate,
		).
		Order("appointment_date ASC, appointment_time ASC").
		Find(&aps).Error

	if err != nil {
		return nil, err
	}

	return aps, nil
}

// Compile-time check
var _ domain.Repository = (*BookingGormRepository)(nil)
