package appointment

import (
	"context"
	"time"

	domain "github.com/agendafacil/agenda-api/internal/domain/booking"
	"github.com/agendafacil/agenda-api/internal/dto"
	"github.com/agendafacil/agenda-api/internal/httperr"
	"github.com/agendafacil/agenda-api/internal/models"
	"github.com/agendafacil/agenda-api/internal/timezone"
)

type ListAppointments struct {
	repo domain.Repository
}

func NewListAppointments(repo domain.Repository) *ListAppointments {
	return &ListAppointments{repo: repo}
}

// ByDate lista todos os agendamentos do dia, cancelados incluídos —
// o painel mostra o histórico completo; só as checagens de reserva
// excluem cancelado.
func (uc *ListAppointments) ByDate(
	ctx context.Context,
	companyID uint,
	date string,
) ([]dto.AppointmentListDTO, error) {

	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}
	next := day.AddDate(0, 0, 1).Format("2006-01-02")

	appointments, err := uc.repo.ListAppointmentsForPeriod(ctx, companyID, date, next)
	if err != nil {
		return nil, err
	}

	return toDTOs(appointments), nil
}

// ByMonth lista o mês-calendário no fuso da empresa.
func (uc *ListAppointments) ByMonth(
	ctx context.Context,
	companyID uint,
	year int,
	month int,
) ([]dto.AppointmentListDTO, error) {

	company, err := uc.repo.GetCompanyByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	loc := timezone.Location(company.Timezone)
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0)

	appointments, err := uc.repo.ListAppointmentsForPeriod(
		ctx,
		companyID,
		start.Format("2006-01-02"),
		end.Format("2006-01-02"),
	)
	if err != nil {
		return nil, err
	}

	return toDTOs(appointments), nil
}

func toDTOs(appointments []models.Appointment) []dto.AppointmentListDTO {
	out := make([]dto.AppointmentListDTO, 0, len(appointments))
	for _, ap := range appointments {
		out = append(out, dto.AppointmentListDTO{
			ID:          ap.ID,
			PublicID:    ap.PublicID,
			Date:        ap.AppointmentDate,
			Time:        ap.AppointmentTime,
			Status:      ap.Status,
			DurationMin: ap.DurationMin,
			ClientName:  ap.Client.Name,
			ServiceName: ap.Service.Name,
		})
	}
	return out
}
