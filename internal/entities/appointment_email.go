package entities

type AppointmentEmailData struct {
	SalonName          string
	ClientName         string
	AppointmentID      string
	ServiceName        string
	StartTimeFormatted string
	EndTimeFormatted   string
	Headline           string
	Body               string
	Status             string
	CurrentYear        int
}
