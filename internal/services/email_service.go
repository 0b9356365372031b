package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/jesusemanuel87/inmobiliaria-api/internal/config"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/models"
	"github.com/jesusemanuel87/inmobiliaria-api/pkg/logger"
	"github.com/resend/resend-go/v2"
)

//go:embed templates/email/*.html
var emailTemplates embed.FS

type EmailService struct {
	config       *config.Config
	resendClient *resend.Client
}

func NewEmailService(cfg *config.Config) *EmailService {
	client := resend.NewClient(cfg.ResendAPIKey)
	return &EmailService{
		config:       cfg,
		resendClient: client,
	}
}

// enabled reports whether outbound email is configured. Without an API
// key every send becomes a logged no-op, which keeps dev environments
// quiet.
func (s *EmailService) enabled() bool {
	return s.config.ResendAPIKey != ""
}

func (s *EmailService) SendContractCreated(ctx context.Context, contract *models.Contract) error {
	if contract.Tenant.Email == "" {
		return nil
	}

	data := struct {
		Name        string
		ContractID  uint
		Address     string
		StartDate   string
		EndDate     string
		MonthlyRent string
		AppURL      string
	}{
		Name:        contract.Tenant.FullName,
		ContractID:  contract.ID,
		Address:     contract.Property.Address,
		StartDate:   contract.StartDate.Format("2006-01-02"),
		EndDate:     contract.EndDate.Format("2006-01-02"),
		MonthlyRent: contract.MonthlyRent.StringFixed(2),
		AppURL:      s.config.AppURL,
	}

	return s.send(contract.Tenant.Email, "Your rental contract", "contract_created.html", data)
}

func (s *EmailService) SendPaymentOverdue(ctx context.Context, contract *models.Contract, payment *models.Payment) error {
	if contract.Tenant.Email == "" {
		return nil
	}

	data := struct {
		Name     string
		Number   int
		DueDate  string
		Amount   string
		Interest string
		Total    string
		AppURL   string
	}{
		Name:     contract.Tenant.FullName,
		Number:   payment.Number,
		DueDate:  payment.DueDate.Format("2006-01-02"),
		Amount:   payment.Amount.StringFixed(2),
		Interest: payment.InterestAmount.StringFixed(2),
		Total:    payment.Total().StringFixed(2),
		AppURL:   s.config.AppURL,
	}

	return s.send(contract.Tenant.Email, "Overdue rent installment", "payment_overdue.html", data)
}

func (s *EmailService) SendAccountCreated(ctx context.Context, user *models.User) error {
	data := struct {
		Name   string
		AppURL string
	}{
		Name:   user.FullName,
		AppURL: s.config.AppURL,
	}

	return s.send(user.Email, "Welcome", "account_created.html", data)
}

func (s *EmailService) send(to, subject, templateName string, data interface{}) error {
	if !s.enabled() {
		logger.Debug("email disabled, skipping send", "to", to, "subject", subject)
		return nil
	}

	body, err := s.renderTemplate(templateName, data)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	}
	if _, err := s.resendClient.Emails.Send(params); err != nil {
		logger.Error(fmt.Sprintf("Failed to send email to %s: %v", to, err))
		return err
	}

	logger.Info(fmt.Sprintf("📧 [Email Sent] To: %s | Subject: %s", to, subject))
	return nil
}

func (s *EmailService) renderTemplate(name string, data interface{}) (string, error) {
	tmpl, err := template.ParseFS(emailTemplates, "templates/email/"+name)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return buf.String(), nil
}
