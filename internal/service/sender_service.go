package service

import (
	"bytes"
	"fmt"
	"html/template"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"nailsalon/internal/config"
	"nailsalon/internal/db"
	"nailsalon/internal/entities"
	"nailsalon/internal/scheduling"
	"nailsalon/internal/utils"
)

// Event is something that happened to an appointment that the client
// hears about.
type Event string

const (
	EventRequested   Event = "requested"
	EventConfirmed   Event = "confirmed"
	EventCancelled   Event = "cancelled"
	EventRescheduled Event = "rescheduled"
)

type Notifier interface {
	Notify(appt db.Appointment, event Event)
}

var emailTemplate = template.Must(template.New("appointment_email").Parse(`<!DOCTYPE html>
<html lang="es">
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>{{.Headline}}</h2>
  <p>Hola {{.ClientName}},</p>
  <p>{{.Body}}</p>
  <table cellpadding="4">
    <tr><td><strong>Servicio:</strong></td><td>{{.ServiceName}}</td></tr>
    <tr><td><strong>Inicio:</strong></td><td>{{.StartTimeFormatted}}</td></tr>
    <tr><td><strong>Fin:</strong></td><td>{{.EndTimeFormatted}}</td></tr>
    <tr><td><strong>Estado:</strong></td><td>{{.Status}}</td></tr>
    <tr><td><strong>Código:</strong></td><td>{{.AppointmentID}}</td></tr>
  </table>
  <p>&copy; {{.CurrentYear}} {{.SalonName}}</p>
</body>
</html>`))

// SenderService notifies clients by e-mail and SMS. Delivery runs in the
// background; failures are logged and never reach the booking caller.
type SenderService struct {
	salonName string
	sendEmail emailFunc
	sendSMS   smsFunc
	metrics   *Metrics
	now       func() time.Time
	emailTmpl *template.Template
	wg        sync.WaitGroup
}

func NewSenderService(cfg *config.Config, m *Metrics) *SenderService {
	s := &SenderService{salonName: cfg.Salon.Name, metrics: m, now: time.Now}
	if cfg.SendGrid.Enabled() {
		s.sendEmail = newSendGridMailer(cfg.SendGrid)
	} else {
		log.Warn().Msg("SendGrid not configured, emails will not be sent")
	}
	if cfg.Twilio.Enabled() {
		s.sendSMS = newTwilioTexter(cfg.Twilio)
	} else {
		log.Warn().Msg("Twilio not configured, SMS will not be sent")
	}
	return s
}

type message struct {
	Subject string
	Plain   string
	SMS     string
	Email   entities.AppointmentEmailData
}

func (s *SenderService) compose(appt db.Appointment, event Event) message {
	start := scheduling.Local(appt.Date)
	end := scheduling.Local(appt.End())
	data := entities.AppointmentEmailData{
		SalonName:          s.salonName,
		ClientName:         appt.ClientName,
		AppointmentID:      appt.ID,
		ServiceName:        appt.ServiceName,
		StartTimeFormatted: start.Format("02/01/2006 15:04"),
		EndTimeFormatted:   end.Format("15:04"),
		Status:             appt.Status.Spanish(),
		CurrentYear:        s.now().In(scheduling.Location).Year(),
	}

	var smsText string
	switch event {
	case EventRequested:
		data.Headline = "Recibimos tu solicitud de cita"
		data.Body = "Tu cita quedó registrada y está pendiente de confirmación."
		smsText = "recibimos tu solicitud de cita para el %s. Te avisaremos cuando sea confirmada."
	case EventConfirmed:
		data.Headline = "Tu cita está confirmada"
		data.Body = "Te esperamos en la fecha y hora indicadas."
		smsText = "tu cita del %s está confirmada. ¡Te esperamos!"
	case EventCancelled:
		data.Headline = "Tu cita fue cancelada"
		data.Body = "Si deseas, puedes reservar un nuevo horario."
		smsText = "tu cita del %s fue cancelada."
	case EventRescheduled:
		data.Headline = "Tu cita fue reprogramada"
		data.Body = "Actualizamos la fecha y hora de tu cita."
		smsText = "tu cita fue reprogramada para el %s."
	}

	return message{
		Subject: fmt.Sprintf("%s: %s", s.salonName, data.Headline),
		Plain: fmt.Sprintf("Hola %s,\n\n%s\n\nServicio: %s\nInicio: %s\nFin: %s\nEstado: %s\nCódigo: %s\n\n%s",
			data.ClientName, data.Body, data.ServiceName, data.StartTimeFormatted,
			data.EndTimeFormatted, data.Status, data.AppointmentID, s.salonName),
		SMS:   fmt.Sprintf("%s: %s, %s", s.salonName, appt.ClientName, fmt.Sprintf(smsText, data.StartTimeFormatted)),
		Email: data,
	}
}

func (s *SenderService) Notify(appt db.Appointment, event Event) {
	msg := s.compose(appt, event)

	if s.sendEmail != nil && appt.ClientEmail != "" {
		html, err := s.renderEmail(msg.Email)
		if err != nil {
			log.Error().Err(err).Str("appointment_id", appt.ID).Msg("error rendering email template, sending plain text only")
		}
		s.wg.Add(1)
		go func(to, name string) {
			defer s.wg.Done()
			err := s.sendEmail(to, name, msg.Subject, msg.Plain, html)
			s.metrics.notified("email", err)
			if err != nil {
				log.Error().Err(err).Str("appointment_id", appt.ID).Str("event", string(event)).Msg("email delivery failed")
			}
		}(appt.ClientEmail, appt.ClientName)
	}

	if s.sendSMS != nil {
		phone := utils.NormalizePhone(appt.ClientPhone, utils.DefaultCountryCode)
		if phone == "" {
			log.Warn().Str("appointment_id", appt.ID).Msg("client phone is not usable for SMS")
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			err := s.sendSMS(phone, msg.SMS)
			s.metrics.notified("sms", err)
			if err != nil {
				log.Error().Err(err).Str("appointment_id", appt.ID).Str("event", string(event)).Msg("sms delivery failed")
			}
		}()
	}
}

// renderEmail returns the HTML body, or "" when the template fails so a
// half-written page is never sent.
func (s *SenderService) renderEmail(data entities.AppointmentEmailData) (string, error) {
	tmpl := s.emailTmpl
	if tmpl == nil {
		tmpl = emailTemplate
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Wait blocks until every notification started so far has finished.
func (s *SenderService) Wait() {
	s.wg.Wait()
}
