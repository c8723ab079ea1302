package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultChannelTimeout = 15 * time.Second

type Settings struct {
	FromAddress    string
	FromName       string
	SMSFrom        string
	SMSTo          string
	ChannelTimeout time.Duration
}

// Dispatcher sends one crisis notification per channel. Channels run concurrently and
// never share fate: each gets its own timeout and its failure is reported, not returned.
type Dispatcher struct {
	email    EmailSender
	sms      SMSSender
	settings Settings
	logger   *zap.Logger
	metrics  *Metrics
}

func NewDispatcher(email EmailSender, sms SMSSender, settings Settings, logger *zap.Logger, metrics *Metrics) *Dispatcher {
	if email == nil {
		email = DisabledEmailSender()
	}
	if sms == nil {
		sms = DisabledSMSSender()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.ChannelTimeout <= 0 {
		settings.ChannelTimeout = defaultChannelTimeout
	}
	return &Dispatcher{
		email:    email,
		sms:      sms,
		settings: settings,
		logger:   logger,
		metrics:  metrics,
	}
}

func (dispatcher *Dispatcher) Dispatch(ctx context.Context, incident Incident) Report {
	if incident.ID == "" {
		incident.ID = uuid.NewString()
	}
	logger := dispatcher.logger.With(
		zap.String("incident_id", incident.ID),
		zap.String("username", incident.Username),
		zap.String("therapist", incident.TherapistUsername),
	)

	results := make([]ChannelResult, 2)
	var group errgroup.Group
	group.Go(func() error {
		results[0] = dispatcher.runChannel(ctx, ChannelEmail, func(channelCtx context.Context) (string, error) {
			message, err := BuildCrisisEmail(incident, dispatcher.settings.FromAddress, dispatcher.settings.FromName)
			if err != nil {
				return "", err
			}
			return dispatcher.email.SendEmail(channelCtx, message)
		})
		return nil
	})
	group.Go(func() error {
		results[1] = dispatcher.runChannel(ctx, ChannelSMS, func(channelCtx context.Context) (string, error) {
			message, err := BuildCrisisSMS(incident, dispatcher.settings.SMSFrom, dispatcher.settings.SMSTo)
			if err != nil {
				return "", err
			}
			return dispatcher.sms.SendSMS(channelCtx, message)
		})
		return nil
	})
	_ = group.Wait()

	for _, result := range results {
		dispatcher.metrics.observe(result)
		if result.Delivered {
			logger.Info("emergency notification delivered",
				zap.String("channel", string(result.Channel)),
				zap.String("reference", result.Reference),
				zap.Duration("duration", result.Duration),
			)
			continue
		}
		logger.Error("emergency notification failed",
			zap.String("channel", string(result.Channel)),
			zap.Error(result.Err),
			zap.Duration("duration", result.Duration),
		)
	}

	return Report{IncidentID: incident.ID, Results: results}
}

func (dispatcher *Dispatcher) runChannel(ctx context.Context, channel Channel, send func(context.Context) (string, error)) (result ChannelResult) {
	started := time.Now()
	result = ChannelResult{Channel: channel}

	defer func() {
		if recovered := recover(); recovered != nil {
			result.Delivered = false
			result.Reference = ""
			result.Err = fmt.Errorf("%s %w: %v", channel, errProviderPanic, recovered)
		}
		result.Duration = time.Since(started)
	}()

	channelCtx, cancel := context.WithTimeout(ctx, dispatcher.settings.ChannelTimeout)
	defer cancel()

	reference, err := send(channelCtx)
	if err != nil {
		result.Err = err
		return result
	}
	result.Delivered = true
	result.Reference = reference
	return result
}
