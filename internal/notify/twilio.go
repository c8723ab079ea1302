package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type messageCreator interface {
	CreateMessage(params *twilioapi.CreateMessageParams) (*twilioapi.ApiV2010Message, error)
}

type TwilioSender struct {
	messages messageCreator
}

func NewTwilioSender(accountSID string, authToken string) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{messages: client.Api}
}

// SendSMS checks ctx before the call; the Twilio client itself is not context aware.
func (sender *TwilioSender) SendSMS(ctx context.Context, message SMSMessage) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetFrom(message.From)
	params.SetTo(message.To)
	params.SetBody(message.Body)

	created, err := sender.messages.CreateMessage(params)
	if err != nil {
		var restErr *twilioclient.TwilioRestError
		if errors.As(err, &restErr) {
			err = &ProviderError{
				Provider:   "twilio",
				StatusCode: restErr.Status,
				Body:       truncate(fmt.Sprintf("%d %s", restErr.Code, restErr.Message), maxProviderErrorBody),
			}
		}
		return "", fmt.Errorf("twilio create message: %w", err)
	}
	if created == nil || created.Sid == nil {
		return "", errors.New("twilio create message: missing sid")
	}
	return *created.Sid, nil
}
