package booking

import (
	"context"

	domain "github.com/agendafacil/agenda-api/internal/domain/booking"
)

// ======================================================
// BOOKING VALIDATOR (ORQUESTRADOR)
// ======================================================

// Validator combina as duas checagens de limite num veredito único.
// A flag admin é resolvida uma vez e curto-circuita as duas; fora
// isso as checagens são independentes e combinadas com AND lógico.
//
// O chamador deve rodar isto de novo, junto com ValidateSlot, logo
// antes de gravar a reserva: a disponibilidade exibida na tela pode
// estar velha em relação a reservas concorrentes.
type Validator struct {
	simultaneous *SimultaneousLimiter
	monthly      *MonthlyLimiter
}

func NewValidator(
	simultaneous *SimultaneousLimiter,
	monthly *MonthlyLimiter,
) *Validator {
	return &Validator{
		simultaneous: simultaneous,
		monthly:      monthly,
	}
}

func (v *Validator) ValidateBookingLimits(
	ctx context.Context,
	companyID uint,
	clientPhone string,
) domain.Decision {

	if v.simultaneous.IsAdminCompany(ctx, companyID) {
		return domain.Decision{
			CanBook:      true,
			IsAdmin:      true,
			Simultaneous: domain.LimitResult{CanBook: true},
			Monthly:      domain.LimitResult{CanBook: true},
		}
	}

	sim := v.simultaneous.Check(ctx, companyID, clientPhone, false)
	mon := v.monthly.check(ctx, companyID, clientPhone)

	return domain.Decision{
		CanBook:      sim.CanBook && mon.CanBook,
		IsAdmin:      false,
		Simultaneous: sim,
		Monthly:      mon,
	}
}
