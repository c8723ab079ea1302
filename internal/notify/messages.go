package notify

import (
	"fmt"
	"html/template"
	"strings"
)

const (
	LabelEmergencyContact = "Emergency Contact"
	LabelTherapist        = "Therapist"
)

func BuildCrisisEmail(incident Incident, fromAddress string, fromName string) (EmailMessage, error) {
	if strings.TrimSpace(fromAddress) == "" {
		return EmailMessage{}, ErrChannelNotConfigured
	}

	recipients := make([]Recipient, 0, 2)
	if address := strings.TrimSpace(incident.EmergencyContactEmail); address != "" {
		recipients = append(recipients, Recipient{Address: address, Label: LabelEmergencyContact})
	}
	if address := strings.TrimSpace(incident.TherapistEmail); address != "" {
		recipients = append(recipients, Recipient{Address: address, Label: LabelTherapist})
	}
	if len(recipients) == 0 {
		return EmailMessage{}, ErrMissingRecipient
	}

	name := displayName(incident)
	return EmailMessage{
		FromAddress: fromAddress,
		FromName:    fromName,
		To:          recipients,
		Subject:     fmt.Sprintf("Mental Health Net has an Emergency Case: %s is having a crisis.", name),
		HTMLBody: fmt.Sprintf(
			"<strong>Hello,<br> We have been notified by %s that they are having a crisis.<br> Our team has been notified and is working on the case.</strong>",
			template.HTMLEscapeString(name),
		),
		TextBody: fmt.Sprintf(
			"Hello, we have been notified by %s that they are having a crisis. Our team has been notified and is working on the case.",
			name,
		),
	}, nil
}

func BuildCrisisSMS(incident Incident, from string, to string) (SMSMessage, error) {
	if strings.TrimSpace(from) == "" {
		return SMSMessage{}, ErrChannelNotConfigured
	}
	if strings.TrimSpace(to) == "" {
		return SMSMessage{}, ErrMissingRecipient
	}

	body := fmt.Sprintf("Mental Health Net crisis alert: %s (@%s) has flagged a crisis.", displayName(incident), incident.Username)
	if therapist := strings.TrimSpace(incident.TherapistFullName); therapist != "" {
		body += fmt.Sprintf(" Assigned therapist: %s.", therapist)
	}
	return SMSMessage{From: from, To: to, Body: body}, nil
}

func displayName(incident Incident) string {
	if name := strings.TrimSpace(incident.UserFullName); name != "" {
		return name
	}
	return incident.Username
}
