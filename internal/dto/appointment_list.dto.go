package dto

type AppointmentListDTO struct {
	ID          uint   `json:"id"`
	PublicID    string `json:"public_id"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Status      string `json:"status"`
	DurationMin int    `json:"duration_min"`
	ClientName  string `json:"client_name"`
	ServiceName string `json:"service_name"`
}
