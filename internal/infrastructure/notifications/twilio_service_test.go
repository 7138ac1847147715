package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sharmarobin1121-cmyk/yikyak2/domain"
)

type fakeMessageAPI struct {
	delay  time.Duration
	err    error
	params *twilioApi.CreateMessageParams
}

func (f *fakeMessageAPI) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	time.Sleep(f.delay)
	f.params = params
	return &twilioApi.ApiV2010Message{}, f.err
}

func newTestSender(api messageAPI, from string, logger *zap.Logger) *TwilioSender {
	s := NewTwilioSender("ACtest", "token", from, 10*time.Minute, logger)
	s.api = api
	return s
}

func TestTwilioSender_Send(t *testing.T) {
	api := &fakeMessageAPI{}
	sender := newTestSender(api, "+15550000000", nil)

	err := sender.Send(context.Background(), "+15551234567", "123456")
	require.NoError(t, err)
	require.NotNil(t, api.params)
	assert.Equal(t, "+15551234567", *api.params.To)
	assert.Equal(t, "+15550000000", *api.params.From)
	assert.Equal(t, "Your verification code is: 123456. Valid for 10 minutes.", *api.params.Body)
}

func TestTwilioSender_ProviderError(t *testing.T) {
	sender := newTestSender(&fakeMessageAPI{err: errors.New("21211: invalid 'To' number")}, "+15550000000", nil)

	err := sender.Send(context.Background(), "+15551234567", "123456")
	assert.ErrorIs(t, err, domain.ErrDeliveryFailed)
}

func TestTwilioSender_Timeout(t *testing.T) {
	sender := newTestSender(&fakeMessageAPI{delay: 200 * time.Millisecond}, "+15550000000", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := sender.Send(ctx, "+15551234567", "123456")
	assert.ErrorIs(t, err, domain.ErrDeliveryFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTwilioSender_LogsWithoutFromNumber(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	api := &fakeMessageAPI{}
	sender := newTestSender(api, "", zap.New(core))

	require.NoError(t, sender.Send(context.Background(), "+15551234567", "123456"))
	assert.Nil(t, api.params)

	entries := logs.FilterMessage("mock sms").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "+1******67", entries[0].ContextMap()["to"])
	assert.Equal(t, "123456", entries[0].ContextMap()["code"])
}
