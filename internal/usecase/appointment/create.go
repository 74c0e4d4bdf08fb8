package appointment

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/agendafacil/agenda-api/internal/audit"
	"github.com/agendafacil/agenda-api/internal/booking"
	domain "github.com/agendafacil/agenda-api/internal/domain/booking"
	"github.com/agendafacil/agenda-api/internal/httperr"
	"github.com/agendafacil/agenda-api/internal/models"
	"github.com/agendafacil/agenda-api/internal/phone"
	"github.com/agendafacil/agenda-api/internal/realtime"
	"github.com/agendafacil/agenda-api/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type CreateAppointmentInput struct {
	CompanyID uint

	ClientName  string
	ClientPhone string
	ClientEmail string

	ServiceID uint

	Date  string // YYYY-MM-DD
	Time  string // HH:MM
	Notes string

	// usuário logado quando a criação vem do painel; nil no fluxo público
	CreatedBy *uint
}

// ======================================================
// USE CASE
// ======================================================

// CreateAppointment roda o pipeline completo de reserva: antecedência
// mínima, expediente, identidade do cliente por telefone, limites,
// conflito de horário e, por fim, o insert — que ainda pode falhar na
// constraint de unicidade se outra reserva ganhar a corrida.
type CreateAppointment struct {
	repo      domain.Repository
	validator *booking.Validator
	conflicts *booking.ConflictDetector
	audit     *audit.Dispatcher
	bus       *realtime.Bus
}

func NewCreateAppointment(
	repo domain.Repository,
	validator *booking.Validator,
	conflicts *booking.ConflictDetector,
	auditDispatcher *audit.Dispatcher,
	bus *realtime.Bus,
) *CreateAppointment {
	return &CreateAppointment{
		repo:      repo,
		validator: validator,
		conflicts: conflicts,
		audit:     auditDispatcher,
		bus:       bus,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in CreateAppointmentInput,
) (*models.Appointment, error) {

	// --------------------------------------------------
	// Empresa + data/hora no fuso dela
	// --------------------------------------------------
	company, err := uc.repo.GetCompanyByID(ctx, in.CompanyID)
	if err != nil {
		return nil, httperr.ErrBusiness("company_not_found")
	}

	loc := timezone.Location(company.Timezone)
	hhmm := booking.NormalizeHHMM(in.Time)

	start, err := time.ParseInLocation("2006-01-02 15:04", in.Date+" "+hhmm, loc)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}

	// --------------------------------------------------
	// Antecedência mínima
	// --------------------------------------------------
	settings, err := uc.repo.GetSettings(ctx, in.CompanyID)
	if err != nil {
		// fail-open: sem as configurações vale a antecedência padrão
		log.Printf("min advance check failed (company=%d): %v", in.CompanyID, err)
	}

	minAdvance := 120
	if settings != nil && settings.MinAdvanceMinutes > 0 {
		minAdvance = settings.MinAdvanceMinutes
	}

	now := timezone.NowIn(company.Timezone)
	if start.Before(now.Add(time.Duration(minAdvance) * time.Minute)) {
		return nil, httperr.ErrBusiness("too_soon")
	}

	// --------------------------------------------------
	// Serviço + expediente
	// --------------------------------------------------
	service, err := uc.repo.GetService(ctx, in.CompanyID, in.ServiceID)
	if err != nil {
		return nil, httperr.ErrBusiness("service_not_found")
	}

	ok, err := uc.withinWorkingHours(ctx, in.CompanyID, start, service.DurationMin)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, httperr.ErrBusiness("outside_working_hours")
	}

	// --------------------------------------------------
	// Cliente: upsert pela chave de identidade do telefone
	// --------------------------------------------------
	client := &models.Client{
		CompanyID:       in.CompanyID,
		Name:            in.ClientName,
		Phone:           in.ClientPhone,
		NormalizedPhone: phone.Normalize(in.ClientPhone),
		Email:           in.ClientEmail,
	}
	if err := uc.repo.UpsertClient(ctx, client); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Limites + conflito: re-checados aqui, na borda do commit,
	// porque a disponibilidade mostrada na tela pode estar velha
	// --------------------------------------------------
	decision := uc.validator.ValidateBookingLimits(ctx, in.CompanyID, in.ClientPhone)
	if !decision.CanBook {
		code := "monthly_limit_reached"
		message := decision.Monthly.Message
		if !decision.Simultaneous.CanBook {
			code = "simultaneous_limit_reached"
			message = decision.Simultaneous.Message
		}

		uc.audit.Dispatch(audit.Event{
			CompanyID: in.CompanyID,
			UserID:    in.CreatedBy,
			Action:    "limit_rejected",
			Entity:    "appointment",
			Metadata: map[string]any{
				"reason": code,
				"date":   in.Date,
				"time":   hhmm,
			},
		})

		return nil, httperr.ErrBusinessMessage(code, message)
	}

	slot := uc.conflicts.ValidateSlot(ctx, in.CompanyID, in.Date, hhmm)
	if !slot.Valid {
		return nil, httperr.ErrBusinessMessage("time_conflict", slot.Message)
	}

	// --------------------------------------------------
	// Insert — a constraint parcial do banco é o juiz final
	// --------------------------------------------------
	ap := &models.Appointment{
		PublicID:        uuid.NewString(),
		CompanyID:       in.CompanyID,
		ClientID:        client.ID,
		ServiceID:       service.ID,
		AppointmentDate: in.Date,
		AppointmentTime: hhmm,
		Status:          string(domain.InitialStatus()),
		DurationMin:     service.DurationMin,
		Notes:           in.Notes,
	}

	if err := uc.repo.CreateAppointment(ctx, ap); err != nil {
		if httperr.IsExclusionConflict(err) {
			uc.audit.Dispatch(audit.Event{
				CompanyID: in.CompanyID,
				UserID:    in.CreatedBy,
				Action:    "appointment_conflict",
				Entity:    "appointment",
				Metadata: map[string]any{
					"date": in.Date,
					"time": hhmm,
				},
			})
			return nil, httperr.ErrBusinessMessage(
				"time_conflict",
				"Este horário acabou de ser reservado por outra pessoa. Escolha outro horário.",
			)
		}
		return nil, err
	}

	// --------------------------------------------------
	// Auditoria + evento em processo
	// --------------------------------------------------
	uc.audit.Dispatch(audit.Event{
		CompanyID: in.CompanyID,
		UserID:    in.CreatedBy,
		Action:    "appointment_created",
		Entity:    "appointment",
		EntityID:  &ap.ID,
	})

	uc.bus.Dispatch("appointment_created", ap)

	return ap, nil
}

// withinWorkingHours valida expediente + pausa de almoço no dia.
func (uc *CreateAppointment) withinWorkingHours(
	ctx context.Context,
	companyID uint,
	start time.Time,
	durationMin int,
) (bool, error) {

	wh, err := uc.repo.GetWorkingHours(ctx, companyID, int(start.Weekday()))
	if err != nil || wh == nil {
		return false, nil
	}

	if !wh.Active || wh.StartTime == "" || wh.EndTime == "" {
		return false, nil
	}

	loc := start.Location()
	parseHM := func(hm string) time.Time {
		t, _ := time.Parse("15:04", hm)
		return time.Date(
			start.Year(), start.Month(), start.Day(),
			t.Hour(), t.Minute(), 0, 0,
			loc,
		)
	}

	end := start.Add(time.Duration(durationMin) * time.Minute)

	workStart := parseHM(wh.StartTime)
	workEnd := parseHM(wh.EndTime)

	if start.Before(workStart) || end.After(workEnd) {
		return false, nil
	}

	if wh.LunchStart != "" && wh.LunchEnd != "" {
		lunchStart := parseHM(wh.LunchStart)
		lunchEnd := parseHM(wh.LunchEnd)
		if start.Before(lunchEnd) && end.After(lunchStart) {
			return false, nil
		}
	}

	return true, nil
}
