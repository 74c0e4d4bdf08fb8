package booking

import (
	"context"
	"log"

	domain "github.com/agendafacil/agenda-api/internal/domain/booking"
)

// ======================================================
// CONFLICT DETECTOR
// ======================================================

// ConflictDetector responde se um horário (empresa, dia, hora) já
// está ocupado por um agendamento não cancelado.
type ConflictDetector struct {
	repo   domain.Repository
	policy Policy
}

func NewConflictDetector(repo domain.Repository, policy Policy) *ConflictDetector {
	return &ConflictDetector{
		repo:   repo,
		policy: policy,
	}
}

// HasConflict compara o horário pedido com cada agendamento do dia,
// ambos truncados a HH:MM. Erro de backend segue a Policy: no padrão
// fail-open o agendamento prossegue e o erro só é logado.
func (d *ConflictDetector) HasConflict(
	ctx context.Context,
	companyID uint,
	date string,
	timeStr string,
) domain.ConflictResult {

	requested := NormalizeHHMM(timeStr)

	appointments, err := d.repo.ListAppointmentsForDate(ctx, companyID, date)
	if err != nil {
		log.Printf("conflict check failed (company=%d date=%s): %v [policy=%s]",
			companyID, date, err, d.policy)

		if d.policy == FailClosed {
			return domain.ConflictResult{Conflict: true}
		}
		return domain.ConflictResult{Conflict: false}
	}

	for _, ap := range appointments {
		if ap.Status == string(domain.StatusCancelled) {
			// cancelado nunca ocupa horário, venha de onde vier a lista
			continue
		}

		if NormalizeHHMM(ap.AppointmentTime) == requested {
			return domain.ConflictResult{
				Conflict: true,
				Details: &domain.ConflictDetails{
					AppointmentID: ap.ID,
					Time:          NormalizeHHMM(ap.AppointmentTime),
					Status:        ap.Status,
					ClientID:      ap.ClientID,
				},
			}
		}
	}

	return domain.ConflictResult{Conflict: false}
}

// ValidateSlot embrulha HasConflict numa resposta pronta para o
// usuário final.
func (d *ConflictDetector) ValidateSlot(
	ctx context.Context,
	companyID uint,
	date string,
	timeStr string,
) domain.SlotValidation {

	res := d.HasConflict(ctx, companyID, date, timeStr)
	if res.Conflict {
		return domain.SlotValidation{
			Valid:   false,
			Message: "Este horário acabou de ser reservado por outra pessoa. Escolha outro horário.",
		}
	}

	return domain.SlotValidation{Valid: true}
}
