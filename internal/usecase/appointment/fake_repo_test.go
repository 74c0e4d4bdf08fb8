package appointment

import (
	"context"
	"errors"

	"github.com/agendafacil/agenda-api/internal/models"
	"github.com/agendafacil/agenda-api/internal/phone"
)

// fakeRepo implementa domain.Repository em memória para os testes do
// pipeline de criação. createErr injeta a falha de insert que simula
// a corrida perdida na constraint do banco.
type fakeRepo struct {
	company      *models.Company
	settings     *models.CompanySettings
	profile      *models.Profile
	service      *models.Service
	workingHours *models.WorkingHours
	clients      map[string]*models.Client
	appointments []models.Appointment

	createErr   error
	settingsErr error
	nextID      uint
}

var errBackend = errors.New("backend unavailable")

func newFakeRepo() *fakeRepo {
	return &fakeRepo{clients: map[string]*models.Client{}, nextID: 1}
}

func (f *fakeRepo) GetCompanyByID(_ context.Context, _ uint) (*models.Company, error) {
	if f.company == nil {
		return nil, errBackend
	}
	return f.company, nil
}

func (f *fakeRepo) GetCompanyBySlug(_ context.Context, _ string) (*models.Company, error) {
	if f.company == nil {
		return nil, errBackend
	}
	return f.company, nil
}

func (f *fakeRepo) GetSettings(_ context.Context, _ uint) (*models.CompanySettings, error) {
	if f.settingsErr != nil {
		return nil, f.settingsErr
	}
	return f.settings, nil
}

func (f *fakeRepo) GetProfile(_ context.Context, _ uint) (*models.Profile, error) {
	return f.profile, nil
}

func (f *fakeRepo) GetService(_ context.Context, _, _ uint) (*models.Service, error) {
	if f.service == nil {
		return nil, errBackend
	}
	return f.service, nil
}

func (f *fakeRepo) FindClientByNormalizedPhone(_ context.Context, _ uint, normalized string) (*models.Client, error) {
	return f.clients[normalized], nil
}

func (f *fakeRepo) UpsertClient(_ context.Context, client *models.Client) error {
	if existing, ok := f.clients[client.NormalizedPhone]; ok {
		existing.Name = client.Name
		existing.Phone = client.Phone
		existing.Email = client.Email
		*client = *existing
		return nil
	}
	client.ID = f.nextID
	f.nextID++
	f.clients[client.NormalizedPhone] = client
	return nil
}

func (f *fakeRepo) CreateAppointment(_ context.Context, ap *models.Appointment) error {
	if f.createErr != nil {
		return f.createErr
	}
	ap.ID = f.nextID
	f.nextID++
	f.appointments = append(f.appointments, *ap)
	return nil
}

func (f *fakeRepo) ListAppointmentsForDate(_ context.Context, _ uint, date string) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, ap := range f.appointments {
		if ap.AppointmentDate == date && ap.Status != "cancelled" {
			out = append(out, ap)
		}
	}
	return out, nil
}

func (f *fakeRepo) CountActiveFromDate(_ context.Context, _ uint, clientID uint, fromDate string) (int64, error) {
	var n int64
	for _, ap := range f.appointments {
		if ap.ClientID != clientID || ap.AppointmentDate < fromDate {
			continue
		}
		if ap.Status == "confirmed" || ap.Status == "in_progress" {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) CountNonCancelledInPeriod(_ context.Context, _ uint, clientID uint, fromDate, toDate string) (int64, error) {
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

func (f *fakeRepo) GetAppointmentForCompany(_ context.Context, appointmentID, _ uint) (*models.Appointment, error) {
	for i := range f.appointments {
		if f.appointments[i].ID == appointmentID {
			return &f.appointments[i], nil
		}
	}
	return nil, errBackend
}

func (f *fakeRepo) UpdateAppointment(_ context.Context, ap *models.Appointment) error {
	for i := range f.appointments {
		if f.appointments[i].ID == ap.ID {
			f.appointments[i] = *ap
			return nil
		}
	}
	return errBackend
}

func (f *fakeRepo) GetWorkingHours(_ context.Context, _ uint, _ int) (*models.WorkingHours, error) {
	return f.workingHours, nil
}

func (f *fakeRepo) ListAppointmentsForPeriod(_ context.Context, _ uint, fromDate, toDate string) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, ap := range f.appointments {
		if ap.AppointmentDate >= fromDate && ap.AppointmentDate < toDate {
			out = append(out, ap)
		}
	}
	return out, nil
}

// seed preenche o cenário padrão: empresa em São Paulo, expediente
// integral todos os dias, serviço de 30 minutos e limites de fábrica.
func (f *fakeRepo) seed() {
	f.company = &models.Company{ID: 1, Name: "Estúdio Aurora", Slug: "aurora", Timezone: "America/Sao_Paulo"}
	f.settings = &models.CompanySettings{
		CompanyID:                   1,
		MaxSimultaneousAppointments: 3,
		MinAdvanceMinutes:           120,
	}
	f.profile = &models.Profile{CompanyID: 1, IsAdmin: false}
	f.service = &models.Service{ID: 7, CompanyID: 1, Name: "Corte", DurationMin: 30, Active: true}
	f.workingHours = &models.WorkingHours{
		CompanyID: 1,
		Active:    true,
		StartTime: "00:00",
		EndTime:   "23:30",
	}
}

func seededClient(f *fakeRepo, rawPhone string) *models.Client {
	client := &models.Client{
		CompanyID:       1,
		Name:            "Cliente",
		Phone:           rawPhone,
		NormalizedPhone: phone.Normalize(rawPhone),
	}
	_ = f.UpsertClient(context.Background(), client)
	return client
}
