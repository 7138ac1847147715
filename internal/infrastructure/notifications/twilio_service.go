package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"github.com/sharmarobin1121-cmyk/yikyak2/domain"
	"github.com/sharmarobin1121-cmyk/yikyak2/internal/logging"
)

// messageAPI is the part of the Twilio REST client the sender needs
type messageAPI interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioSender implements domain.SMSSender
type TwilioSender struct {
	api        messageAPI
	fromNumber string
	codeTTL    time.Duration
	logger     *zap.Logger
}

// NewTwilioSender creates a Twilio SMS sender. With an empty fromNumber
// codes are logged instead of sent.
func NewTwilioSender(accountSID, authToken, fromNumber string, codeTTL time.Duration, logger *zap.Logger) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioSender{
		api:        client.Api,
		fromNumber: fromNumber,
		codeTTL:    codeTTL,
		logger:     logging.OrNop(logger).Named("sms"),
	}
}

// Message renders the SMS body for a code
func (t *TwilioSender) Message(code string) string {
	return fmt.Sprintf("Your verification code is: %s. Valid for %d minutes.", code, int(t.codeTTL.Minutes()))
}

// Send implements domain.SMSSender. The Twilio client has no context
// support, so the call runs in its own goroutine and ctx bounds the wait.
func (t *TwilioSender) Send(ctx context.Context, phoneNumber, code string) error {
	if t.fromNumber == "" {
		t.logger.Info("mock sms",
			zap.String("to", logging.MaskPhone(phoneNumber)),
			zap.String("code", code),
		)
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(phoneNumber)
	params.SetFrom(t.fromNumber)
	params.SetBody(t.Message(code))

	done := make(chan error, 1)
	go func() {
		_, err := t.api.CreateMessage(params)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrDeliveryFailed, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", domain.ErrDeliveryFailed, ctx.Err())
	}
}
