package notify

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

var (
	ErrChannelNotConfigured = errors.New("notification channel not configured")
	ErrMissingRecipient     = errors.New("notification recipient missing")

	errProviderPanic = errors.New("provider panic")
)

// Reason codes are the only failure detail shown to end users. The full error stays in
// the log.
const (
	ReasonNotConfigured    = "not_configured"
	ReasonMissingRecipient = "missing_recipient"
	ReasonTimeout          = "timeout"
	ReasonProviderError    = "provider_error"
	ReasonInternal         = "internal"
)

// Incident is a snapshot of the people involved in one emergency request.
type Incident struct {
	ID                    string
	Username              string
	UserFullName          string
	EmergencyContactEmail string
	TherapistUsername     string
	TherapistFullName     string
	TherapistEmail        string
}

type Recipient struct {
	Address string
	Label   string
}

type EmailMessage struct {
	FromAddress string
	FromName    string
	To          []Recipient
	Subject     string
	HTMLBody    string
	TextBody    string
}

type SMSMessage struct {
	From string
	To   string
	Body string
}

// EmailSender returns a provider reference (message id or status) on success.
type EmailSender interface {
	SendEmail(ctx context.Context, message EmailMessage) (string, error)
}

// SMSSender returns the provider message id on success.
type SMSSender interface {
	SendSMS(ctx context.Context, message SMSMessage) (string, error)
}

type ChannelResult struct {
	Channel   Channel
	Delivered bool
	Reference string
	Err       error
	Duration  time.Duration
}

func (result ChannelResult) Reason() string {
	if result.Err == nil {
		return ""
	}
	return result.Err.Error()
}

// ReasonCode maps the failure to one of the Reason* codes; empty when delivered.
func (result ChannelResult) ReasonCode() string {
	err := result.Err
	var providerErr *ProviderError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrChannelNotConfigured):
		return ReasonNotConfigured
	case errors.Is(err, ErrMissingRecipient):
		return ReasonMissingRecipient
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ReasonTimeout
	case errors.As(err, &providerErr):
		return ReasonProviderError
	default:
		return ReasonInternal
	}
}

type Report struct {
	IncidentID string
	Results    []ChannelResult
}

func (report Report) Result(channel Channel) (ChannelResult, bool) {
	for _, result := range report.Results {
		if result.Channel == channel {
			return result, true
		}
	}
	return ChannelResult{}, false
}

func (report Report) AllDelivered() bool {
	if len(report.Results) == 0 {
		return false
	}
	for _, result := range report.Results {
		if !result.Delivered {
			return false
		}
	}
	return true
}

func (report Report) FailedChannels() []Channel {
	failed := make([]Channel, 0)
	for _, result := range report.Results {
		if !result.Delivered {
			failed = append(failed, result.Channel)
		}
	}
	return failed
}

// ProviderError describes a non-2xx answer from an upstream notification API.
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (err *ProviderError) Error() string {
	if err.Body == "" {
		return fmt.Sprintf("%s status %d", err.Provider, err.StatusCode)
	}
	return fmt.Sprintf("%s status %d: %s", err.Provider, err.StatusCode, err.Body)
}

type disabledEmailSender struct{}

func (disabledEmailSender) SendEmail(context.Context, EmailMessage) (string, error) {
	return "", ErrChannelNotConfigured
}

type disabledSMSSender struct{}

func (disabledSMSSender) SendSMS(context.Context, SMSMessage) (string, error) {
	return "", ErrChannelNotConfigured
}

// DisabledEmailSender fails every send with ErrChannelNotConfigured.
func DisabledEmailSender() EmailSender { return disabledEmailSender{} }

// DisabledSMSSender fails every send with ErrChannelNotConfigured.
func DisabledSMSSender() SMSSender { return disabledSMSSender{} }
