// Package email provides the email client for sending transactional emails.
package email

import (
	"fmt"

	"github.com/resendlabs/resend-go"

	"github.com/luminor-ai/luminor-go/internal/infrastructure/email/templates"
	"github.com/luminor-ai/luminor-go/pkg/config"
)

// Service defines the interface for sending emails, allowing for mock
// implementations in tests.
type Service interface {
	SendWelcomeEmail(toEmail, username string) error
}

// ResendClient is the concrete implementation of the email Service using the
// Resend API.
type ResendClient struct {
	client *resend.Client
	from   string
}

// NewService creates a new email service client, returning the Service
// interface. An error means no API key is configured; callers treat email
// as an optional capability.
func NewService() (Service, error) {
	if config.ResendAPIKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY is not configured")
	}

	return &ResendClient{
		client: resend.NewClient(config.ResendAPIKey),
		from:   config.EmailFromAddress,
	}, nil
}

// SendWelcomeEmail composes and sends the registration welcome email.
func (c *ResendClient) SendWelcomeEmail(toEmail, username string) error {
	content := templates.GetWelcomeEmailContent(templates.WelcomeEmailProps{
		Username: username,
	})

	htmlContent := templates.GetEmailLayout(templates.EmailLayoutProps{
		Preheader: "Your Luminor account is ready",
		Content:   content,
	})

	params := &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{toEmail},
		Subject: "Welcome to Luminor",
		Html:    htmlContent,
	}

	if _, err := c.client.Emails.Send(params); err != nil {
		return fmt.Errorf("failed to send welcome email via Resend: %w", err)
	}

	return nil
}
