package booking

import (
	"context"
	"fmt"
	"log"
	"time"

	domain "github.com/agendafacil/agenda-api/internal/domain/booking"
	"github.com/agendafacil/agenda-api/internal/phone"
)

// ======================================================
// MONTHLY LIMITER
// ======================================================

// MonthlyLimiter limita agendamentos não cancelados de um cliente
// dentro do mês-calendário corrente. O limite é opt-in: empresa sem
// monthly_appointments_limit configurado não limita nada.
type MonthlyLimiter struct {
	repo   domain.Repository
	policy Policy
	loc    *time.Location
	now    func() time.Time
}

func NewMonthlyLimiter(
	repo domain.Repository,
	policy Policy,
	loc *time.Location,
	now func() time.Time,
) *MonthlyLimiter {
	if now == nil {
		now = time.Now
	}
	return &MonthlyLimiter{
		repo:   repo,
		policy: policy,
		loc:    loc,
		now:    now,
	}
}

// Check resolve a flag admin da empresa e aplica o limite mensal.
func (l *MonthlyLimiter) Check(
	ctx context.Context,
	companyID uint,
	clientPhone string,
) domain.LimitResult {

	profile, err := l.repo.GetProfile(ctx, companyID)
	if err != nil {
		log.Printf("monthly limit: admin check failed (company=%d): %v", companyID, err)
		// sem confirmação de admin, o limite vale — segue a checagem
	} else if profile != nil && profile.IsAdmin {
		return domain.LimitResult{CanBook: true}
	}

	return l.check(ctx, companyID, clientPhone)
}

// Allowed é a variante simples aceita/recusa.
func (l *MonthlyLimiter) Allowed(ctx context.Context, companyID uint, clientPhone string) bool {
	return l.Check(ctx, companyID, clientPhone).CanBook
}

// check aplica o limite sem reavaliar a flag admin (o orquestrador
// já resolveu uma vez).
func (l *MonthlyLimiter) check(
	ctx context.Context,
	companyID uint,
	clientPhone string,
) domain.LimitResult {

	settings, err := l.repo.GetSettings(ctx, companyID)
	if err != nil {
		return l.failPolicy("load settings", companyID, err)
	}

	if settings == nil || settings.MonthlyAppointmentsLimit == nil || *settings.MonthlyAppointmentsLimit <= 0 {
		return domain.LimitResult{CanBook: true}
	}
	limit := *settings.MonthlyAppointmentsLimit

	client, err := l.repo.FindClientByNormalizedPhone(
		ctx,
		companyID,
		phone.Normalize(clientPhone),
	)
	if err != nil {
		return l.failPolicy("find client", companyID, err)
	}
	if client == nil {
		return domain.LimitResult{CanBook: true, Limit: limit}
	}

	// [YYYY-MM-01, primeiro dia do mês seguinte) no calendário local;
	// AddDate cuida da virada dezembro → janeiro
	ref := l.now().In(l.loc)
	monthStart := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, l.loc)
	nextMonth := monthStart.AddDate(0, 1, 0)

	count, err := l.repo.CountNonCancelledInPeriod(
		ctx,
		companyID,
		client.ID,
		monthStart.Format("2006-01-02"),
		nextMonth.Format("2006-01-02"),
	)
	if err != nil {
		return l.failPolicy("count month", companyID, err)
	}

	result := domain.LimitResult{
		CanBook:      int(count) < limit,
		CurrentCount: int(count),
		Limit:        limit,
	}

	if !result.CanBook {
		result.Message = fmt.Sprintf(
			"Você já possui %d agendamento(s) neste mês. O limite é %d.",
			count, limit,
		)
	}

	return result
}

func (l *MonthlyLimiter) failPolicy(step string, companyID uint, err error) domain.LimitResult {
	log.Printf("monthly limit: %s failed (company=%d): %v [policy=%s]",
		step, companyID, err, l.policy)

	if l.policy == FailClosed {
		return domain.LimitResult{
			CanBook: false,
			Message: "Não foi possível validar seus agendamentos. Tente novamente.",
		}
	}
	return domain.LimitResult{CanBook: true}
}
