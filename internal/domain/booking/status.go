package booking

import "github.com/agendafacil/agenda-api/internal/httperr"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// ActiveStatuses são os status que contam para o limite de
// agendamentos simultâneos de um cliente.
var ActiveStatuses = []string{
	string(StatusConfirmed),
	string(StatusInProgress),
}

// CountsForMonthly diz se o status entra na contagem do limite
// mensal. Cancelado nunca conta — fica no banco, mas é excluído
// por predicado de todas as checagens.
func CountsForMonthly(s Status) bool {
	return s != StatusCancelled
}

// ===============================
// Validations
// ===============================

// CanCancel define se um agendamento pode ser cancelado
func CanCancel(current Status) error {
	if current != StatusScheduled && current != StatusConfirmed {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

// CanConfirm define se um agendamento pode ser confirmado
func CanConfirm(current Status) error {
	if current != StatusScheduled {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

// CanStart define se o atendimento pode ser iniciado
func CanStart(current Status) error {
	if current != StatusScheduled && current != StatusConfirmed {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

// CanComplete define se um agendamento pode ser concluído
func CanComplete(current Status) error {
	switch current {
	case StatusScheduled, StatusConfirmed, StatusInProgress:
		return nil
	}
	return httperr.ErrBusiness("invalid_state")
}

// InitialStatus valida status inicial
func InitialStatus() Status {
	return StatusScheduled
}
