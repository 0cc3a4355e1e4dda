package templates

import (
	"fmt"

	"github.com/PeakReachMedia/peakreach-go/models"
)

type LeadNotificationProps struct {
	Lead          *models.Lead
	Session       *models.Session
	FormStepLabel string
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// GetLeadNotificationContent builds the body of the lead summary email.
func GetLeadNotificationContent(props LeadNotificationProps) string {
	lead := props.Lead

	rows := GetDetailRow("Email", lead.Email) +
		GetDetailRow("Website", lead.WebsiteURL) +
		GetDetailRow("Company", deref(lead.CompanyName)) +
		GetDetailRow("Role", deref(lead.Role)) +
		GetDetailRow("Monthly revenue", deref(lead.MonthlyRevenue)) +
		GetDetailRow("Phone", deref(lead.Phone)) +
		GetDetailRow("Funnel step", fmt.Sprintf("%d", lead.Step))

	content := GetHeading(fmt.Sprintf("Lead captured &mdash; %s", props.FormStepLabel)) +
		GetDetailTable(rows)

	if props.Session != nil {
		sessionRows := GetDetailRow("First landed", props.Session.FirstPageURL) +
			GetDetailRow("Referrer", props.Session.Referrer) +
			GetDetailRow("Browser", props.Session.Browser)
		if props.Session.City != nil {
			sessionRows += GetDetailRow("Location", fmt.Sprintf("%s, %s", *props.Session.City, deref(props.Session.Country)))
		}
		content += GetParagraph("Session context:") + GetDetailTable(sessionRows)
	} else {
		content += GetParagraph("No session was associated with this lead.")
	}

	return content
}

type BookingNotificationProps struct {
	Booking *models.Booking
	Lead    *models.Lead
}

// GetBookingNotificationContent builds the body of the booking summary email.
func GetBookingNotificationContent(props BookingNotificationProps) string {
	booking := props.Booking

	rows := GetDetailRow("Attendee", booking.AttendeeName) +
		GetDetailRow("Email", booking.AttendeeEmail) +
		GetDetailRow("Date", booking.Date) +
		GetDetailRow("Time", fmt.Sprintf("%s &ndash; %s", booking.StartTime, booking.EndTime)) +
		GetDetailRow("Meeting link", booking.MeetingLink)

	if props.Lead != nil {
		rows += GetDetailRow("Lead website", props.Lead.WebsiteURL)
	}

	return GetHeading("Strategy call booked") + GetDetailTable(rows)
}
