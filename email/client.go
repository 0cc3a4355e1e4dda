// Package email provides email client functionality
package email

import (
	"fmt"
	"os"

	"github.com/PeakReachMedia/peakreach-go/email/templates"
	"github.com/PeakReachMedia/peakreach-go/models"
	"github.com/resendlabs/resend-go"
)

type Client struct {
	resend    *resend.Client
	fromEmail string
	fromName  string
	toEmail   string
}

func NewClient() (*Client, error) {
	apiKey := os.Getenv("RESEND_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY environment variable is required")
	}

	fromEmail := os.Getenv("EMAIL_FROM")
	if fromEmail == "" {
		fromEmail = "noreply@peakreach.io"
	}

	fromName := os.Getenv("EMAIL_FROM_NAME")
	if fromName == "" {
		fromName = "PeakReach"
	}

	toEmail := os.Getenv("LEAD_NOTIFICATION_EMAIL")
	if toEmail == "" {
		toEmail = "leads@peakreach.io"
	}

	client := resend.NewClient(apiKey)

	return &Client{
		resend:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
		toEmail:   toEmail,
	}, nil
}

// SendLeadNotification emails the team a summary of a captured lead and its
// session. Callers treat failures as fire-and-forget: log and move on, the
// lead write is the operation of record.
func (c *Client) SendLeadNotification(lead *models.Lead, session *models.Session, formStepLabel string) error {
	subject := fmt.Sprintf("New lead: %s (%s)", lead.Email, formStepLabel)

	content := templates.GetLeadNotificationContent(templates.LeadNotificationProps{
		Lead:          lead,
		Session:       session,
		FormStepLabel: formStepLabel,
	})

	htmlContent := templates.GetEmailLayout(templates.EmailLayoutProps{
		Content: content,
	})

	request := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      []string{c.toEmail},
		Subject: subject,
		Html:    htmlContent,
	}

	_, err := c.resend.Emails.Send(request)
	if err != nil {
		return fmt.Errorf("failed to send lead notification: %w", err)
	}

	return nil
}

// SendBookingNotification emails the team when a visitor books a call.
func (c *Client) SendBookingNotification(booking *models.Booking, lead *models.Lead) error {
	subject := fmt.Sprintf("New booking: %s on %s", booking.AttendeeName, booking.Date)

	content := templates.GetBookingNotificationContent(templates.BookingNotificationProps{
		Booking: booking,
		Lead:    lead,
	})

	htmlContent := templates.GetEmailLayout(templates.EmailLayoutProps{
		Content: content,
	})

	request := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      []string{c.toEmail},
		Subject: subject,
		Html:    htmlContent,
	}

	_, err := c.resend.Emails.Send(request)
	if err != nil {
		return fmt.Errorf("failed to send booking notification: %w", err)
	}

	return nil
}
