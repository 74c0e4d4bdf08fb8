package booking

import (
	"context"
	"errors"

	"github.com/agendafacil/agenda-api/internal/models"
)

// fakeRepo implementa domain.Repository em memória para os testes do
// core. failOn liga falha simulada por operação.
type fakeRepo struct {
	company      *models.Company
	settings     *models.CompanySettings
	profile      *models.Profile
	client       *models.Client
	appointments []models.Appointment

	failOn map[string]bool
}

var errBackend = errors.New("backend unavailable")

func newFakeRepo() *fakeRepo {
	return &fakeRepo{failOn: map[string]bool{}}
}

func (f *fakeRepo) fail(op string) bool { return f.failOn[op] }

func (f *fakeRepo) GetCompanyByID(_ context.Context, id uint) (*models.Company, error) {
	if f.fail("company") {
		return nil, errBackend
	}
	return f.company, nil
}

func (f *fakeRepo) GetCompanyBySlug(_ context.Context, _ string) (*models.Company, error) {
	return f.company, nil
}

func (f *fakeRepo) GetSettings(_ context.Context, _ uint) (*models.CompanySettings, error) {
	if f.fail("settings") {
		return nil, errBackend
	}
	return f.settings, nil
}

func (f *fakeRepo) GetProfile(_ context.Context, _ uint) (*models.Profile, error) {
	if f.fail("profile") {
		return nil, errBackend
	}
	return f.profile, nil
}

func (f *fakeRepo) GetService(_ context.Context, _, _ uint) (*models.Service, error) {
	return nil, errBackend
}

func (f *fakeRepo) FindClientByNormalizedPhone(_ context.Context, _ uint, normalized string) (*models.Client, error) {
	if f.fail("client") {
		return nil, errBackend
	}
	if f.client != nil && f.client.NormalizedPhone == normalized {
		return f.client, nil
	}
	return nil, nil
}

func (f *fakeRepo) UpsertClient(_ context.Context, c *models.Client) error {
	f.client = c
	return nil
}

func (f *fakeRepo) CreateAppointment(_ context.Context, ap *models.Appointment) error {
	f.appointments = append(f.appointments, *ap)
	return nil
}

func (f *fakeRepo) ListAppointmentsForDate(_ context.Context, _ uint, date string) ([]models.Appointment, error) {
	if f.fail("list") {
		return nil, errBackend
	}
	var out []models.Appointment
	for _, ap := range f.appointments {
		if ap.AppointmentDate == date && ap.Status != "cancelled" {
			out = append(out, ap)
		}
	}
	return out, nil
}

func (f *fakeRepo) CountActiveFromDate(_ context.Context, _ uint, clientID uint, fromDate string) (int64, error) {
	if f.fail("countActive") {
		return 0, errBackend
	}
	var n int64
	for _, ap := range f.appointments {
		if ap.ClientID != clientID {
			continue
		}
		if ap.Status != "confirmed" && ap.Status != "in_progress" {
			continue
		}
		if ap.AppointmentDate >= fromDate {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) CountNonCancelledInPeriod(_ context.Context, _ uint, clientID uint, fromDate, toDate string) (int64, error) {
	if f.fail("countMonth") {
		return 0, errBackend
	}
	var n int64
	for _, ap := range f.appointments {
		if ap.ClientID != clientID || ap.Status == "cancelled" {
			continue
		}
		if ap.AppointmentDate >= fromDate && ap.AppointmentDate < toDate {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) GetAppointmentForCompany(_ context.Context, _, _ uint) (*models.Appointment, error) {
	return nil, errBackend
}

func (f *fakeRepo) UpdateAppointment(_ context.Context, _ *models.Appointment) error {
	return nil
}

func (f *fakeRepo) GetWorkingHours(_ context.Context, _ uint, _ int) (*models.WorkingHours, error) {
	return nil, errBackend
}

func (f *fakeRepo) ListAppointmentsForPeriod(_ context.Context, _ uint, _, _ string) ([]models.Appointment, error) {
	return nil, errBackend
}
