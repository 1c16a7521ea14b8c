package service

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"nailsalon/internal/config"
)

type emailFunc func(toEmail, toName, subject, plainText, html string) error

type smsFunc func(toNumber, body string) error

func newSendGridMailer(cfg config.SendGridConfig) emailFunc {
	client := sendgrid.NewSendClient(cfg.APIKey)
	from := mail.NewEmail(cfg.FromName, cfg.FromEmail)

	return func(toEmail, toName, subject, plainText, html string) error {
		to := mail.NewEmail(toName, toEmail)
		var message *mail.SGMailV3
		if html == "" {
			message = mail.NewSingleEmailPlainText(from, subject, to, plainText)
		} else {
			message = mail.NewSingleEmail(from, subject, to, plainText, html)
		}
		response, err := client.Send(message)
		if err != nil {
			return fmt.Errorf("falló el envío del correo a través de SendGrid: %w", err)
		}
		if response.StatusCode >= 200 && response.StatusCode < 300 {
			log.Info().Str("to", toEmail).Str("subject", subject).Int("status", response.StatusCode).Msg("email sent")
			return nil
		}
		return fmt.Errorf("SendGrid devolvió un estado no exitoso %d: %s", response.StatusCode, response.Body)
	}
}

func newTwilioTexter(cfg config.TwilioConfig) smsFunc {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username:   cfg.AccountSID,
		Password:   cfg.AuthToken,
		AccountSid: cfg.AccountSID,
	})

	return func(toNumber, body string) error {
		params := &openapi.CreateMessageParams{}
		params.SetTo(toNumber)
		params.SetFrom(cfg.FromNumber)
		params.SetBody(body)

		resp, err := client.Api.CreateMessage(params)
		if err != nil {
			return fmt.Errorf("falló el envío del SMS: %w", err)
		}
		if resp != nil && resp.Sid != nil {
			log.Info().Str("to", toNumber).Str("sid", *resp.Sid).Msg("sms sent")
		}
		return nil
	}
}
