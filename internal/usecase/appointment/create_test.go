package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/agendafacil/agenda-api/internal/audit"
	"github.com/agendafacil/agenda-api/internal/booking"
	"github.com/agendafacil/agenda-api/internal/httperr"
	"github.com/agendafacil/agenda-api/internal/models"
	"github.com/agendafacil/agenda-api/internal/realtime"
	"github.com/agendafacil/agenda-api/internal/timezone"
)

func newAuditDispatcher(t *testing.T) *audit.Dispatcher {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	mock.MatchExpectationsInOrder(false)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "audit_logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return audit.NewDispatcher(audit.New(db))
}

func newCreateUC(t *testing.T, repo *fakeRepo) (*CreateAppointment, *realtime.Bus) {
	t.Helper()

	loc := timezone.Location("America/Sao_Paulo")
	simultaneous := booking.NewSimultaneousLimiter(repo, booking.FailOpen, loc, nil)
	monthly := booking.NewMonthlyLimiter(repo, booking.FailOpen, loc, nil)
	validator := booking.NewValidator(simultaneous, monthly)
	conflicts := booking.NewConflictDetector(repo, booking.FailOpen)

	bus := realtime.NewBus()
	uc := NewCreateAppointment(repo, validator, conflicts, newAuditDispatcher(t), bus)
	return uc, bus
}

// data confortavelmente no futuro, respeitando a antecedência mínima
func futureDate() string {
	return timezone.NowIn("America/Sao_Paulo").AddDate(0, 0, 7).Format("2006-01-02")
}

func TestCreateAppointment(t *testing.T) {
	repo := newFakeRepo()
	repo.seed()
	uc, bus := newCreateUC(t, repo)

	var published *models.Appointment
	bus.On("appointment_created", func(payload any) {
		published, _ = payload.(*models.Appointment)
	})

	ap, err := uc.Execute(context.Background(), CreateAppointmentInput{
		CompanyID:   1,
		ClientName:  "Maria Souza",
		ClientPhone: "(11) 99999-8888",
		ServiceID:   7,
		Date:        futureDate(),
		Time:        "10:00",
	})

	require.NoError(t, err)
	assert.Equal(t, "scheduled", ap.Status)
	assert.Equal(t, "10:00", ap.AppointmentTime)
	assert.Equal(t, 30, ap.DurationMin)
	assert.NotEmpty(t, ap.PublicID)

	// cliente nasceu com a chave de identidade normalizada
	client := repo.clients["5511999998888"]
	require.NotNil(t, client)
	assert.Equal(t, client.ID, ap.ClientID)

	// evento em processo saiu com o agendamento criado
	require.NotNil(t, published)
	assert.Equal(t, ap.ID, published.ID)
}

func TestCreateAppointmentTruncatesSeconds(t *testing.T) {
	repo := newFakeRepo()
	repo.seed()
	uc, _ := newCreateUC(t, repo)

	ap, err := uc.Execute(context.Background(), CreateAppointmentInput{
		CompanyID:   1,
		ClientName:  "Maria Souza",
		ClientPhone: "(11) 99999-8888",
		ServiceID:   7,
		Date:        futureDate(),
		Time:        "10:00:45",
	})

	require.NoError(t, err)
	assert.Equal(t, "10:00", ap.AppointmentTime)
}

func TestCreateAppointmentSlotTaken(t *testing.T) {
	repo := newFakeRepo()
	repo.seed()
	uc, _ := newCreateUC(t, repo)

	date := futureDate()
	repo.appointments = append(repo.appointments, models.Appointment{
		ID:              90,
		CompanyID:       1,
		ClientID:        50,
		AppointmentDate: date,
		AppointmentTime: "10:00",
		Status:          "scheduled",
	})

	_, err := uc.Execute(context.Background(), CreateAppointmentInput{
		CompanyID:   1,
		ClientName:  "Maria Souza",
		ClientPhone: "(11) 99999-8888",
		ServiceID:   7,
		Date:        date,
		Time:        "10:00:30", // mesmo minuto em outra grafia
	})

	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, "time_conflict"))
	assert.NotEmpty(t, httperr.BusinessMessage(err))
}

func TestCreateAppointmentLosesInsertRace(t *testing.T) {
	repo := newFakeRepo()
	repo.seed()
	uc, _ := newCreateUC(t, repo)

	// as checagens passam, mas o insert esbarra na constraint parcial:
	// outra reserva ganhou a corrida entre a validação e o commit
	repo.createErr = &pgconn.PgError{Code: "23505", ConstraintName: "idx_appointments_slot"}

	_, err := uc.Execute(context.Background(), CreateAppointmentInput{
		CompanyID:   1,
		ClientName:  "Maria Souza",
		ClientPhone: "(11) 99999-8888",
		ServiceID:   7,
		Date:        futureDate(),
		Time:        "10:00",
	})

	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, "time_conflict"))
	assert.Contains(t, httperr.BusinessMessage(err), "acabou de ser reservado")
}

func TestCreateAppointmentSettingsErrorFallsBackToDefaultAdvance(t *testing.T) {
	repo := newFakeRepo()
	repo.seed()
	repo.settingsErr = errBackend
	uc, _ := newCreateUC(t, repo)

	// sem conseguir ler as configurações, vale a antecedência padrão
	// de 120 minutos: um horário folgado continua passando
	ap, err := uc.Execute(context.Background(), CreateAppointmentInput{
		CompanyID:   1,
		ClientName:  "Maria Souza",
		ClientPhone: "(11) 99999-8888",
		ServiceID:   7,
		Date:        futureDate(),
		Time:        "10:00",
	})

	require.NoError(t, err)
	assert.Equal(t, "scheduled", ap.Status)

	// e um horário dentro da janela padrão continua barrado
	soon := timezone.NowIn("America/Sao_Paulo").Add(30 * time.Minute)
	_, err = uc.Execute(context.Background(), CreateAppointmentInput{
		CompanyID:   1,
		ClientName:  "Maria Souza",
		ClientPhone: "(11) 99999-8888",
		ServiceID:   7,
		Date:        soon.Format("2006-01-02"),
		Time:        soon.Format("15:04"),
	})

	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, "too_soon"))
}

func TestCreateAppointmentTooSoon(t *testing.T) {
	repo := newFakeRepo()
	repo.seed()
	uc, _ := newCreateUC(t, repo)

	soon := timezone.NowIn("America/Sao_Paulo").Add(30 * time.Minute)

	_, err := uc.Execute(context.Background(), CreateAppointmentInput{
		CompanyID:   1,
		ClientName:  "Maria Souza",
		ClientPhone: "(11) 99999-8888",
		ServiceID:   7,
		Date:        soon.Format("2006-01-02"),
		Time:        soon.Format("15:04"),
	})

	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, "too_soon"))
}

func TestCreateAppointmentOutsideWorkingHours(t *testing.T) {
	repo := newFakeRepo()
	repo.seed()
	repo.workingHours.StartTime = "09:00"
	repo.workingHours.EndTime = "12:00"
	uc, _ := newCreateUC(t, repo)

	_, err := uc.Execute(context.Background(), CreateAppointmentInput{
		CompanyID:   1,
		ClientName:  "Maria Souza",
		ClientPhone: "(11) 99999-8888",
		ServiceID:   7,
		Date:        futureDate(),
		Time:        "14:00",
	})

	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, "outside_working_hours"))
}

func TestCreateAppointmentSimultaneousLimitBlocks(t *testing.T) {
	repo := newFakeRepo()
	repo.seed()
	uc, _ := newCreateUC(t, repo)

	client := seededClient(repo, "(11) 99999-8888")
	date := futureDate()
	for i := 0; i < 3; i++ {
		repo.appointments = append(repo.appointments, models.Appointment{
			ID:              uint(100 + i),
			CompanyID:       1,
			ClientID:        client.ID,
			AppointmentDate: date,
			AppointmentTime: time.Date(2000, 1, 1, 9+i, 0, 0, 0, time.UTC).Format("15:04"),
			Status:          "confirmed",
		})
	}

	_, err := uc.Execute(context.Background(), CreateAppointmentInput{
		CompanyID:   1,
		ClientName:  "Maria Souza",
		ClientPhone: "11 99999 8888", // outra grafia, mesma identidade
		ServiceID:   7,
		Date:        date,
		Time:        "15:00",
	})

	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, "simultaneous_limit_reached"))
	assert.NotEmpty(t, httperr.BusinessMessage(err))
}

func TestCreateAppointmentAdminBypassesLimits(t *testing.T) {
	repo := newFakeRepo()
	repo.seed()
	repo.profile.IsAdmin = true
	uc, _ := newCreateUC(t, repo)

	client := seededClient(repo, "(11) 99999-8888")
	date := futureDate()
	for i := 0; i < 5; i++ {
		repo.appointments = append(repo.appointments, models.Appointment{
			ID:              uint(100 + i),
			CompanyID:       1,
			ClientID:        client.ID,
			AppointmentDate: date,
			AppointmentTime: time.Date(2000, 1, 1, 9+i, 0, 0, 0, time.UTC).Format("15:04"),
			Status:          "confirmed",
		})
	}

	ap, err := uc.Execute(context.Background(), CreateAppointmentInput{
		CompanyID:   1,
		ClientName:  "Maria Souza",
		ClientPhone: "(11) 99999-8888",
		ServiceID:   7,
		Date:        date,
		Time:        "16:00",
	})

	// admin passa pelos limites, mas não pelo conflito de horário
	require.NoError(t, err)
	assert.Equal(t, "16:00", ap.AppointmentTime)
}
