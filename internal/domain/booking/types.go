package booking

// ===============================
// Check Results
// ===============================

// ConflictDetails identifica o agendamento que já ocupa o horário,
// para diagnóstico no chamador.
type ConflictDetails struct {
	AppointmentID uint   `json:"appointment_id"`
	Time          string `json:"time"`
	Status        string `json:"status"`
	ClientID      uint   `json:"client_id"`
}

type ConflictResult struct {
	Conflict bool             `json:"conflict"`
	Details  *ConflictDetails `json:"details,omitempty"`
}

type SlotValidation struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// LimitResult é o resultado de uma checagem de limite (simultâneo ou
// mensal). Limit <= 0 significa "sem limite".
type LimitResult struct {
	CanBook      bool   `json:"can_book"`
	CurrentCount int    `json:"current_count"`
	Limit        int    `json:"limit"`
	Message      string `json:"message,omitempty"`
}

// Decision combina as duas checagens de limite em um veredito único.
// Os sub-resultados seguem juntos para o chamador mostrar o motivo
// exato do bloqueio.
type Decision struct {
	CanBook      bool        `json:"can_book"`
	IsAdmin      bool        `json:"is_admin"`
	Simultaneous LimitResult `json:"simultaneous_limit"`
	Monthly      LimitResult `json:"monthly_limit"`
}

// ===============================
// Availability
// ===============================

type AvailabilityInput struct {
	CompanyID uint
	ServiceID uint
	Date      string // YYYY-MM-DD
}

type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}
