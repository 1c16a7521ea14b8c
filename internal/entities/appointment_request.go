package entities

// AppointmentRequest is the public booking payload. Date is a local
// "YYYY-MM-DDTHH:MM" wall-clock time or an RFC 3339 instant.
type AppointmentRequest struct {
	ClientName  string `json:"client_name" validate:"required,min=2,max=120"`
	ClientPhone string `json:"client_phone" validate:"required,min=7,max=20"`
	ClientEmail string `json:"client_email" validate:"omitempty,email,max=254"`
	ServiceID   string `json:"service_id" validate:"required"`
	Date        string `json:"date" validate:"required"`
	Notes       string `json:"notes" validate:"max=500"`
}

// AppointmentUpdateRequest changes an appointment. Absent fields are
// left untouched.
type AppointmentUpdateRequest struct {
	Status *string `json:"status" validate:"omitempty"`
	Date   *string `json:"date" validate:"omitempty"`
	Notes  *string `json:"notes" validate:"omitempty,max=500"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type CreateAdminRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}
