package appointment

import (
	"context"

	"github.com/agendafacil/agenda-api/internal/audit"
	domain "github.com/agendafacil/agenda-api/internal/domain/booking"
	"github.com/agendafacil/agenda-api/internal/httperr"
	"github.com/agendafacil/agenda-api/internal/models"
	"github.com/agendafacil/agenda-api/internal/realtime"
	"github.com/agendafacil/agenda-api/internal/timezone"
)

// ======================================================
// TRANSIÇÕES DE STATUS
// ======================================================

// Transition aplica cancel/confirm/start/complete num agendamento da
// empresa. Cancelado nunca é apagado: sai das contagens por predicado.
type Transition struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	bus   *realtime.Bus
}

func NewTransition(
	repo domain.Repository,
	auditDispatcher *audit.Dispatcher,
	bus *realtime.Bus,
) *Transition {
	return &Transition{
		repo:  repo,
		audit: auditDispatcher,
		bus:   bus,
	}
}

func (uc *Transition) Cancel(
	ctx context.Context,
	companyID uint,
	userID *uint,
	appointmentID uint,
) (*models.Appointment, error) {

	return uc.apply(ctx, companyID, userID, appointmentID, "appointment_cancelled",
		func(ap *models.Appointment, company *models.Company) error {
			return domain.Cancel(ap, timezone.NowIn(company.Timezone))
		})
}

func (uc *Transition) Confirm(
	ctx context.Context,
	companyID uint,
	userID *uint,
	appointmentID uint,
) (*models.Appointment, error) {

	return uc.apply(ctx, companyID, userID, appointmentID, "appointment_confirmed",
		func(ap *models.Appointment, _ *models.Company) error {
			return domain.Confirm(ap)
		})
}

func (uc *Transition) Start(
	ctx context.Context,
	companyID uint,
	userID *uint,
	appointmentID uint,
) (*models.Appointment, error) {

	return uc.apply(ctx, companyID, userID, appointmentID, "appointment_started",
		func(ap *models.Appointment, _ *models.Company) error {
			return domain.Start(ap)
		})
}

func (uc *Transition) Complete(
	ctx context.Context,
	companyID uint,
	userID *uint,
	appointmentID uint,
) (*models.Appointment, error) {

	return uc.apply(ctx, companyID, userID, appointmentID, "appointment_completed",
		func(ap *models.Appointment, company *models.Company) error {
			return domain.Complete(ap, timezone.NowIn(company.Timezone))
		})
}

func (uc *Transition) apply(
	ctx context.Context,
	companyID uint,
	userID *uint,
	appointmentID uint,
	action string,
	change func(*models.Appointment, *models.Company) error,
) (*models.Appointment, error) {

	company, err := uc.repo.GetCompanyByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	ap, err := uc.repo.GetAppointmentForCompany(ctx, appointmentID, companyID)
	if err != nil {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}

	if err := change(ap, company); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		CompanyID: companyID,
		UserID:    userID,
		Action:    action,
		Entity:    "appointment",
		EntityID:  &ap.ID,
	})

	uc.bus.Dispatch(action, ap)

	return ap, nil
}
