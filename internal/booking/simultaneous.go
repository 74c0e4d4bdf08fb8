package booking

import (
	"context"
	"fmt"
	"log"
	"time"

	domain "github.com/agendafacil/agenda-api/internal/domain/booking"
	"github.com/agendafacil/agenda-api/internal/phone"
)

const defaultSimultaneousLimit = 3

// ======================================================
// SIMULTANEOUS LIMITER
// ======================================================

// SimultaneousLimiter limita quantos agendamentos ativos (confirmado
// ou em andamento, de hoje em diante) um mesmo cliente pode ter.
// Relógio e fuso entram por injeção para os testes fixarem o "hoje".
type SimultaneousLimiter struct {
	repo   domain.Repository
	policy Policy
	loc    *time.Location
	now    func() time.Time
}

func NewSimultaneousLimiter(
	repo domain.Repository,
	policy Policy,
	loc *time.Location,
	now func() time.Time,
) *SimultaneousLimiter {
	if now == nil {
		now = time.Now
	}
	return &SimultaneousLimiter{
		repo:   repo,
		policy: policy,
		loc:    loc,
		now:    now,
	}
}

// IsAdminCompany resolve a flag administrativa no perfil da empresa.
// Falha resolve para false: sem confirmação, os limites valem.
func (l *SimultaneousLimiter) IsAdminCompany(ctx context.Context, companyID uint) bool {
	profile, err := l.repo.GetProfile(ctx, companyID)
	if err != nil {
		log.Printf("admin check failed (company=%d): %v", companyID, err)
		return false
	}
	if profile == nil {
		return false
	}
	return profile.IsAdmin
}

// Check aplica o limite simultâneo. Empresa admin passa direto;
// cliente desconhecido passa (zero agendamentos ativos); erro de
// backend segue a Policy.
func (l *SimultaneousLimiter) Check(
	ctx context.Context,
	companyID uint,
	clientPhone string,
	isAdminCompany bool,
) domain.LimitResult {

	if isAdminCompany {
		return domain.LimitResult{CanBook: true}
	}

	settings, err := l.repo.GetSettings(ctx, companyID)
	if err != nil {
		return l.failPolicy("load settings", companyID, err)
	}

	limit := defaultSimultaneousLimit
	if settings != nil && settings.MaxSimultaneousAppointments > 0 {
		limit = settings.MaxSimultaneousAppointments
	}

	client, err := l.repo.FindClientByNormalizedPhone(
		ctx,
		companyID,
		phone.Normalize(clientPhone),
	)
	if err != nil {
		return l.failPolicy("find client", companyID, err)
	}
	if client == nil {
		// cliente novo: nenhum agendamento ativo ainda
		return domain.LimitResult{CanBook: true, Limit: limit}
	}

	today := l.now().In(l.loc).Format("2006-01-02")

	count, err := l.repo.CountActiveFromDate(ctx, companyID, client.ID, today)
	if err != nil {
		return l.failPolicy("count active", companyID, err)
	}

	result := domain.LimitResult{
		CanBook:      int(count) < limit,
		CurrentCount: int(count),
		Limit:        limit,
	}

	if !result.CanBook {
		result.Message = fmt.Sprintf(
			"Você já possui %d agendamento(s) ativo(s). O limite é %d.",
			count, limit,
		)
	}

	return result
}

func (l *SimultaneousLimiter) failPolicy(step string, companyID uint, err error) domain.LimitResult {
	log.Printf("simultaneous limit: %s failed (company=%d): %v [policy=%s]",
		step, companyID, err, l.policy)

	if l.policy == FailClosed {
		return domain.LimitResult{
			CanBook: false,
			Message: "Não foi possível validar seus agendamentos. Tente novamente.",
		}
	}
	return domain.LimitResult{CanBook: true}
}
