package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/oilledger/internal/domain/models"
	"github.com/mamadbah2/oilledger/internal/service/commands"
)

type fakeDispatcher struct {
	reply string
	err   error
	seen  []models.Command
}

func (f *fakeDispatcher) HandleCommand(_ context.Context, cmd models.Command, _ string) (string, error) {
	f.seen = append(f.seen, cmd)
	return f.reply, f.err
}

func textPayload(from string, bodies ...string) models.WebhookPayload {
	msgs := make([]models.InboundMessage, 0, len(bodies))
	for i, body := range bodies {
		msgs = append(msgs, models.InboundMessage{
			From: from,
			ID:   fmt.Sprintf("wamid.%d", i),
			Type: "text",
			Text: &models.TextContent{Body: body},
		})
	}
	return models.WebhookPayload{
		Object: "whatsapp_business_account",
		Entry: []models.WebhookEntry{{
			Changes: []models.WebhookChange{{Field: "messages", Value: models.WebhookValue{Messages: msgs}}},
		}},
	}
}

func TestVerifyWebhookToken(t *testing.T) {
	svc := NewInboundService("secret", &fakeClient{}, &fakeDispatcher{}, nil, nil)

	challenge, err := svc.VerifyWebhookToken("subscribe", "secret", "1234")
	require.NoError(t, err)
	assert.Equal(t, "1234", challenge)

	_, err = svc.VerifyWebhookToken("subscribe", "wrong", "1234")
	assert.Error(t, err)
	_, err = svc.VerifyWebhookToken("unsubscribe", "secret", "1234")
	assert.Error(t, err)
	_, err = svc.VerifyWebhookToken("", "", "")
	assert.Error(t, err)
}

func TestHandleWebhookRepliesToStaff(t *testing.T) {
	fc := &fakeClient{}
	disp := &fakeDispatcher{reply: "Stock report 2024-01-01"}
	svc := NewInboundService("secret", fc, disp, []string{"+919800000001"}, nil)

	require.NoError(t, svc.HandleWebhook(context.Background(), textPayload("919800000001", "report")))

	require.Len(t, disp.seen, 1)
	assert.Equal(t, models.CommandReport, disp.seen[0].Type)
	assert.Equal(t, []sentMessage{{to: "919800000001", body: "Stock report 2024-01-01"}}, fc.sent)
}

func TestHandleWebhookIgnoresUnknownSender(t *testing.T) {
	fc := &fakeClient{}
	disp := &fakeDispatcher{reply: "report"}
	svc := NewInboundService("secret", fc, disp, []string{"919800000001"}, nil)

	require.NoError(t, svc.HandleWebhook(context.Background(), textPayload("15550000000", "report")))
	assert.Empty(t, disp.seen)
	assert.Empty(t, fc.sent)
}

func TestHandleWebhookSkipsNonTextMessages(t *testing.T) {
	fc := &fakeClient{}
	disp := &fakeDispatcher{}
	svc := NewInboundService("secret", fc, disp, []string{"919800000001"}, nil)

	payload := models.WebhookPayload{Entry: []models.WebhookEntry{{Changes: []models.WebhookChange{{
		Value: models.WebhookValue{Messages: []models.InboundMessage{{From: "919800000001", Type: "image"}}},
	}}}}}

	require.NoError(t, svc.HandleWebhook(context.Background(), payload))
	assert.Empty(t, disp.seen)
	assert.Empty(t, fc.sent)
}

func TestHandleWebhookInvalidDateGetsHint(t *testing.T) {
	fc := &fakeClient{}
	disp := &fakeDispatcher{err: fmt.Errorf("%w: bad date", commands.ErrInvalidArguments)}
	svc := NewInboundService("secret", fc, disp, []string{"919800000001"}, nil)

	require.NoError(t, svc.HandleWebhook(context.Background(), textPayload("919800000001", "report 1/2/24")))
	require.Len(t, fc.sent, 1)
	assert.Contains(t, fc.sent[0].body, "YYYY-MM-DD")
}

func TestHandleWebhookReportsDispatchFailure(t *testing.T) {
	boom := errors.New("store offline")
	fc := &fakeClient{}
	disp := &fakeDispatcher{err: boom}
	svc := NewInboundService("secret", fc, disp, []string{"919800000001"}, nil)

	err := svc.HandleWebhook(context.Background(), textPayload("919800000001", "report", "help"))
	require.ErrorIs(t, err, boom)
	assert.Len(t, disp.seen, 2)
	assert.Len(t, fc.sent, 2)
}

func TestHandleWebhookSplitsLongReplies(t *testing.T) {
	fc := &fakeClient{}
	line := strings.Repeat("y", 100)
	long := strings.TrimSuffix(strings.Repeat(line+"\n", 60), "\n")
	svc := NewInboundService("secret", fc, &fakeDispatcher{reply: long}, []string{"919800000001"}, nil)

	require.NoError(t, svc.HandleWebhook(context.Background(), textPayload("919800000001", "report")))
	require.Len(t, fc.sent, 2)
	for _, m := range fc.sent {
		assert.LessOrEqual(t, len(m.body), maxBodyLength)
	}
}

func TestHandleWebhookSendFailure(t *testing.T) {
	fc := &fakeClient{failTo: "919800000001"}
	svc := NewInboundService("secret", fc, &fakeDispatcher{reply: "ok"}, []string{"919800000001"}, nil)

	err := svc.HandleWebhook(context.Background(), textPayload("919800000001", "report"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reply to 919800000001")
}
