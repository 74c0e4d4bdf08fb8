package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/agendafacil/agenda-api/internal/models"
)

// relógio fixo: 2025-01-10 em São Paulo
func fixedNow() time.Time {
	return time.Date(2025, time.January, 10, 9, 0, 0, 0, saoPaulo())
}

func saoPaulo() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		panic(err)
	}
	return loc
}

func newSimultaneous(repo *fakeRepo, policy Policy) *SimultaneousLimiter {
	return NewSimultaneousLimiter(repo, policy, saoPaulo(), fixedNow)
}

func repoWithClient(cap int) *fakeRepo {
	repo := newFakeRepo()
	repo.settings = &models.CompanySettings{CompanyID: 1, MaxSimultaneousAppointments: cap}
	repo.client = &models.Client{ID: 9, CompanyID: 1, NormalizedPhone: "5511999998888"}
	return repo
}

func TestSimultaneousLimitReached(t *testing.T) {
	repo := repoWithClient(2)
	repo.appointments = []models.Appointment{
		{ClientID: 9, AppointmentDate: "2025-01-11", AppointmentTime: "10:00", Status: "confirmed"},
		{ClientID: 9, AppointmentDate: "2025-01-12", AppointmentTime: "10:00", Status: "confirmed"},
	}

	res := newSimultaneous(repo, FailOpen).Check(context.Background(), 1, "(11) 99999-8888", false)

	assert.False(t, res.CanBook)
	assert.Equal(t, 2, res.CurrentCount)
	assert.Equal(t, 2, res.Limit)
	assert.NotEmpty(t, res.Message)
}

func TestSimultaneousCancelledFreesSlot(t *testing.T) {
	repo := repoWithClient(2)
	repo.appointments = []models.Appointment{
		{ClientID: 9, AppointmentDate: "2025-01-11", AppointmentTime: "10:00", Status: "confirmed"},
		{ClientID: 9, AppointmentDate: "2025-01-12", AppointmentTime: "10:00", Status: "cancelled"},
	}

	res := newSimultaneous(repo, FailOpen).Check(context.Background(), 1, "11999998888", false)

	assert.True(t, res.CanBook)
	assert.Equal(t, 1, res.CurrentCount)
}

func TestSimultaneousPastAndScheduledDontCount(t *testing.T) {
	repo := repoWithClient(2)
	repo.appointments = []models.Appointment{
		// passado: antes do "hoje" fixo
		{ClientID: 9, AppointmentDate: "2025-01-05", AppointmentTime: "10:00", Status: "confirmed"},
		// scheduled ainda não conta como ativo
		{ClientID: 9, AppointmentDate: "2025-01-12", AppointmentTime: "10:00", Status: "scheduled"},
	}

	res := newSimultaneous(repo, FailOpen).Check(context.Background(), 1, "11999998888", false)

	assert.True(t, res.CanBook)
	assert.Equal(t, 0, res.CurrentCount)
}

func TestSimultaneousUnknownClientPasses(t *testing.T) {
	repo := newFakeRepo()
	repo.settings = &models.CompanySettings{CompanyID: 1, MaxSimultaneousAppointments: 1}

	res := newSimultaneous(repo, FailOpen).Check(context.Background(), 1, "11988887777", false)

	assert.True(t, res.CanBook)
	assert.Equal(t, 0, res.CurrentCount)
	assert.Equal(t, 1, res.Limit)
}

func TestSimultaneousDefaultLimit(t *testing.T) {
	repo := repoWithClient(0) // sem cap configurado → 3
	repo.appointments = []models.Appointment{
		{ClientID: 9, AppointmentDate: "2025-01-11", AppointmentTime: "10:00", Status: "confirmed"},
		{ClientID: 9, AppointmentDate: "2025-01-12", AppointmentTime: "10:00", Status: "in_progress"},
	}

	res := newSimultaneous(repo, FailOpen).Check(context.Background(), 1, "11999998888", false)

	assert.True(t, res.CanBook)
	assert.Equal(t, 2, res.CurrentCount)
	assert.Equal(t, 3, res.Limit)
}

func TestSimultaneousAdminBypass(t *testing.T) {
	repo := repoWithClient(1)
	repo.appointments = []models.Appointment{
		{ClientID: 9, AppointmentDate: "2025-01-11", AppointmentTime: "10:00", Status: "confirmed"},
	}

	res := newSimultaneous(repo, FailOpen).Check(context.Background(), 1, "11999998888", true)

	assert.True(t, res.CanBook)
	assert.Equal(t, 0, res.CurrentCount)
}

func TestSimultaneousFailOpenOnEachStep(t *testing.T) {
	for _, step := range []string{"settings", "client", "countActive"} {
		repo := repoWithClient(1)
		repo.appointments = []models.Appointment{
			{ClientID: 9, AppointmentDate: "2025-01-11", AppointmentTime: "10:00", Status: "confirmed"},
		}
		repo.failOn[step] = true

		res := newSimultaneous(repo, FailOpen).Check(context.Background(), 1, "11999998888", false)

		assert.True(t, res.CanBook, "step %s", step)
		assert.Equal(t, 0, res.CurrentCount, "step %s", step)
	}
}

func TestSimultaneousFailClosed(t *testing.T) {
	repo := repoWithClient(1)
	repo.failOn["countActive"] = true

	res := newSimultaneous(repo, FailClosed).Check(context.Background(), 1, "11999998888", false)

	assert.False(t, res.CanBook)
	assert.NotEmpty(t, res.Message)
}

func TestIsAdminCompany(t *testing.T) {
	repo := newFakeRepo()
	l := newSimultaneous(repo, FailOpen)

	// sem perfil → não admin
	assert.False(t, l.IsAdminCompany(context.Background(), 1))

	repo.profile = &models.Profile{CompanyID: 1, IsAdmin: true}
	assert.True(t, l.IsAdminCompany(context.Background(), 1))

	// falha de backend resolve para false (o padrão conservador)
	repo.failOn["profile"] = true
	assert.False(t, l.IsAdminCompany(context.Background(), 1))
}
