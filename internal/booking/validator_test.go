package booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agendafacil/agenda-api/internal/models"
)

func newValidator(repo *fakeRepo) *Validator {
	return NewValidator(
		newSimultaneous(repo, FailOpen),
		newMonthly(repo, FailOpen),
	)
}

func validatorRepo() *fakeRepo {
	repo := newFakeRepo()
	repo.settings = &models.CompanySettings{
		CompanyID:                   1,
		MaxSimultaneousAppointments: 2,
		MonthlyAppointmentsLimit:    intPtr(3),
	}
	repo.client = &models.Client{ID: 9, CompanyID: 1, NormalizedPhone: "5511999998888"}
	return repo
}

func TestValidateBookingLimitsAllowed(t *testing.T) {
	repo := validatorRepo()
	repo.appointments = []models.Appointment{
		{ClientID: 9, AppointmentDate: "2025-01-11", AppointmentTime: "10:00", Status: "confirmed"},
	}

	dec := newValidator(repo).ValidateBookingLimits(context.Background(), 1, "11999998888")

	assert.True(t, dec.CanBook)
	assert.False(t, dec.IsAdmin)
	assert.True(t, dec.Simultaneous.CanBook)
	assert.True(t, dec.Monthly.CanBook)
}

func TestValidateBookingLimitsSimultaneousBlocks(t *testing.T) {
	repo := validatorRepo()
	repo.appointments = []models.Appointment{
		{ClientID: 9, AppointmentDate: "2025-01-11", AppointmentTime: "10:00", Status: "confirmed"},
		{ClientID: 9, AppointmentDate: "2025-01-12", AppointmentTime: "10:00", Status: "confirmed"},
	}

	dec := newValidator(repo).ValidateBookingLimits(context.Background(), 1, "11999998888")

	assert.False(t, dec.CanBook)
	assert.False(t, dec.Simultaneous.CanBook)
	assert.True(t, dec.Monthly.CanBook)
}

func TestValidateBookingLimitsMonthlyBlocks(t *testing.T) {
	repo := validatorRepo()
	// três no mês, mas só um ativo (os outros completed)
	repo.appointments = []models.Appointment{
		{ClientID: 9, AppointmentDate: "2025-01-02", AppointmentTime: "10:00", Status: "completed"},
		{ClientID: 9, AppointmentDate: "2025-01-05", AppointmentTime: "10:00", Status: "completed"},
		{ClientID: 9, AppointmentDate: "2025-01-12", AppointmentTime: "10:00", Status: "confirmed"},
	}

	dec := newValidator(repo).ValidateBookingLimits(context.Background(), 1, "11999998888")

	assert.False(t, dec.CanBook)
	assert.True(t, dec.Simultaneous.CanBook)
	assert.False(t, dec.Monthly.CanBook)
	assert.Equal(t, 3, dec.Monthly.CurrentCount)
}

func TestValidateBookingLimitsAdminShortCircuits(t *testing.T) {
	repo := validatorRepo()
	repo.profile = &models.Profile{CompanyID: 1, IsAdmin: true}
	// estado que bloquearia qualquer empresa comum
	for i := 0; i < 10; i++ {
		repo.appointments = append(repo.appointments, models.Appointment{
			ClientID: 9, AppointmentDate: "2025-01-12", AppointmentTime: "10:00", Status: "confirmed",
		})
	}

	dec := newValidator(repo).ValidateBookingLimits(context.Background(), 1, "11999998888")

	assert.True(t, dec.CanBook)
	assert.True(t, dec.IsAdmin)
	assert.True(t, dec.Simultaneous.CanBook)
	assert.True(t, dec.Monthly.CanBook)
}

func TestValidateBookingLimitsFailOpen(t *testing.T) {
	repo := validatorRepo()
	repo.failOn["settings"] = true
	repo.failOn["profile"] = true

	dec := newValidator(repo).ValidateBookingLimits(context.Background(), 1, "11999998888")
	assert.True(t, dec.CanBook)
}
