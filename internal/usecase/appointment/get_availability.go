package appointment

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/agendafacil/agenda-api/internal/booking"
	domain "github.com/agendafacil/agenda-api/internal/domain/booking"
	"github.com/agendafacil/agenda-api/internal/httperr"
	"github.com/agendafacil/agenda-api/internal/timezone"
)

type GetAvailability struct {
	repo domain.Repository
}

func NewGetAvailability(repo domain.Repository) *GetAvailability {
	return &GetAvailability{repo: repo}
}

func (uc *GetAvailability) Execute(
	ctx context.Context,
	in domain.AvailabilityInput,
) ([]domain.TimeSlot, error) {

	company, err := uc.repo.GetCompanyByID(ctx, in.CompanyID)
	if err != nil {
		return nil, httperr.ErrBusiness("company_not_found")
	}

	service, err := uc.repo.GetService(ctx, in.CompanyID, in.ServiceID)
	if err != nil {
		return nil, httperr.ErrBusiness("service_not_found")
	}

	day, err := time.ParseInLocation("2006-01-02", in.Date, timezone.Location(company.Timezone))
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}

	wh, err := uc.repo.GetWorkingHours(ctx, in.CompanyID, int(day.Weekday()))
	if err != nil || wh == nil || !wh.Active {
		return []domain.TimeSlot{}, nil
	}

	dayStart := minutesOf(wh.StartTime)
	dayEnd := minutesOf(wh.EndTime)
	if dayEnd <= dayStart {
		return []domain.TimeSlot{}, nil
	}

	hasLunch := wh.LunchStart != "" && wh.LunchEnd != ""
	lunchStart := minutesOf(wh.LunchStart)
	lunchEnd := minutesOf(wh.LunchEnd)

	appointments, err := uc.repo.ListAppointmentsForDate(ctx, in.CompanyID, in.Date)
	if err != nil {
		return nil, err
	}

	type interval struct{ start, end int }
	occupied := make([]interval, 0, len(appointments))
	for _, ap := range appointments {
		start := minutesOf(booking.NormalizeHHMM(ap.AppointmentTime))
		duration := ap.DurationMin
		if duration <= 0 {
			duration = service.DurationMin
		}
		occupied = append(occupied, interval{start: start, end: start + duration})
	}

	step := service.DurationMin
	var slots []domain.TimeSlot

	for cur := dayStart; cur+step <= dayEnd; cur += step {
		slotStart := cur
		slotEnd := cur + step

		// almoço
		if hasLunch && slotStart < lunchEnd && slotEnd > lunchStart {
			continue
		}

		conflict := false
		for _, ap := range occupied {
			if slotStart < ap.end && slotEnd > ap.start {
				conflict = true
				break
			}
		}

		if !conflict {
			slots = append(slots, domain.TimeSlot{
				Start: hhmmOf(slotStart),
				End:   hhmmOf(slotEnd),
			})
		}
	}

	if slots == nil {
		slots = []domain.TimeSlot{}
	}
	return slots, nil
}

func minutesOf(hhmm string) int {
	parts := strings.SplitN(booking.NormalizeHHMM(hhmm), ":", 2)
	if len(parts) != 2 {
		return 0
	}
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	return h*60 + m
}

func hhmmOf(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
