package email

import (
	"fmt"
	"html"

	"github.com/Alijeyrad/medibook_backend/pkg/constants"
)

// NewAppointmentData describes a booking for the doctor's notification mail.
type NewAppointmentData struct {
	DoctorName    string
	DoctorEmail   string
	PatientName   string
	AppointmentID string
	Specialty     string
	Date          string
	Amount        int64
	Currency      string
	AppName       string
}

// BuildNewAppointmentEmail tells a doctor that a patient booked with them.
func BuildNewAppointmentEmail(d NewAppointmentData) Message {
	appName := d.AppName
	if appName == "" {
		appName = constants.AppName
	}

	subject := fmt.Sprintf("New appointment %s", d.AppointmentID)

	text := fmt.Sprintf(`Hello %s,

%s booked an appointment with you.

Appointment ID: %s
Specialty: %s
Date: %s
Paid: %d %s

%s`,
		d.DoctorName, d.PatientName, d.AppointmentID, d.Specialty, d.Date, d.Amount, d.Currency, appName)

	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #0f766e;">Hello %s,</h2>
    <p><strong>%s</strong> booked an appointment with you.</p>
    <table style="border-collapse: collapse;">
        <tr><td style="padding: 4px 12px 4px 0;">Appointment ID</td><td style="font-family: monospace;">%s</td></tr>
        <tr><td style="padding: 4px 12px 4px 0;">Specialty</td><td>%s</td></tr>
        <tr><td style="padding: 4px 12px 4px 0;">Date</td><td>%s</td></tr>
        <tr><td style="padding: 4px 12px 4px 0;">Paid</td><td>%d %s</td></tr>
    </table>
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">%s</p>
</body>
</html>`,
		html.EscapeString(d.DoctorName), html.EscapeString(d.PatientName), html.EscapeString(d.AppointmentID),
		html.EscapeString(d.Specialty), html.EscapeString(d.Date), d.Amount, html.EscapeString(d.Currency),
		html.EscapeString(appName))

	return Message{
		To:       []string{d.DoctorEmail},
		Subject:  subject,
		TextBody: text,
		HTMLBody: body,
	}
}
