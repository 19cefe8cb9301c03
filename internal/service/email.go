package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"ugc-marketplace-backend/internal/logger"
)

// mailSender delivers one message and reports the provider status code
type mailSender func(ctx context.Context, msg *mail.SGMailV3) (int, string, error)

type emailService struct {
	fromAddress string
	fromName    string
	send        mailSender
}

// NewEmailService sends through SendGrid. Without an API key messages are logged and dropped.
func NewEmailService(apiKey, fromAddress, fromName string) EmailService {
	s := &emailService{fromAddress: fromAddress, fromName: fromName}
	if apiKey != "" {
		client := sendgrid.NewSendClient(apiKey)
		s.send = func(ctx context.Context, msg *mail.SGMailV3) (int, string, error) {
			resp, err := client.SendWithContext(ctx, msg)
			if err != nil {
				return 0, "", err
			}
			return resp.StatusCode, resp.Body, nil
		}
	}
	return s
}

func (s *emailService) SendInvite(ctx context.Context, to, toName, companyName, campaignTitle string) error {
	subject := fmt.Sprintf("%s convidou você para uma campanha", companyName)
	body := fmt.Sprintf("Olá %s,\n\n%s convidou você para participar da campanha \"%s\".\n\nAbra o app para aceitar ou recusar o convite.\n\nEquipe UGC", toName, companyName, campaignTitle)
	return s.deliver(ctx, to, toName, subject, body)
}

func (s *emailService) SendApplicationDecision(ctx context.Context, to, toName, campaignTitle string, accepted bool) error {
	subject := fmt.Sprintf("Sua candidatura para \"%s\" foi recusada", campaignTitle)
	body := fmt.Sprintf("Olá %s,\n\nInfelizmente sua candidatura para a campanha \"%s\" não foi aprovada desta vez.\n\nEquipe UGC", toName, campaignTitle)
	if accepted {
		subject = fmt.Sprintf("Sua candidatura para \"%s\" foi aprovada", campaignTitle)
		body = fmt.Sprintf("Olá %s,\n\nParabéns! Sua candidatura para a campanha \"%s\" foi aprovada.\n\nEquipe UGC", toName, campaignTitle)
	}
	return s.deliver(ctx, to, toName, subject, body)
}

func (s *emailService) SendTierUpgrade(ctx context.Context, to, toName, companyName, tierName string) error {
	subject := fmt.Sprintf("Você subiu para o nível %s", tierName)
	body := fmt.Sprintf("Olá %s,\n\nVocê alcançou o nível %s na comunidade %s.\n\nEquipe UGC", toName, tierName, companyName)
	return s.deliver(ctx, to, toName, subject, body)
}

func (s *emailService) SendApplicationDigest(ctx context.Context, to, toName, companyName string, pending int32) error {
	subject := fmt.Sprintf("%d candidaturas aguardando revisão", pending)
	body := fmt.Sprintf("Olá %s,\n\n%s tem %d candidaturas pendentes nas campanhas ativas.\n\nEquipe UGC", toName, companyName, pending)
	return s.deliver(ctx, to, toName, subject, body)
}

func (s *emailService) deliver(ctx context.Context, to, toName, subject, body string) error {
	if s.send == nil {
		logger.Debug("Email delivery disabled, dropping message", "to", to, "subject", subject)
		return nil
	}
	from := mail.NewEmail(s.fromName, s.fromAddress)
	msg := mail.NewSingleEmail(from, subject, mail.NewEmail(toName, to), body, "")

	logger.ExternalServiceCall("sendgrid", "send", "to", to, "subject", subject)
	status, respBody, err := s.send(ctx, msg)
	logger.ExternalServiceResult("sendgrid", "send", err, "status", status)
	if err != nil {
		return fmt.Errorf("failed to send email via sendgrid: %w", err)
	}
	if status >= 400 {
		return fmt.Errorf("sendgrid rejected email with status %d: %s", status, respBody)
	}
	return nil
}
