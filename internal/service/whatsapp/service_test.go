package whatsapp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/preorder/internal/domain/models"
	client "github.com/mamadbah2/preorder/pkg/clients/whatsapp"
)

type sentMessage struct {
	To, Body string
}

type recordingClient struct {
	sent []sentMessage
	err  error
}

var _ client.Client = (*recordingClient)(nil)

func (r *recordingClient) SendText(_ context.Context, to, body string) (string, error) {
	r.sent = append(r.sent, sentMessage{To: to, Body: body})
	if r.err != nil {
		return "", r.err
	}
	return "wamid.reply", nil
}

type echoDispatcher struct {
	err error
}

func (e echoDispatcher) HandleCommand(_ context.Context, cmd models.Command, _ string) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	return "ran " + string(cmd.Type), nil
}

func payload(msgs ...models.InboundMessage) models.WebhookPayload {
	return models.WebhookPayload{Entry: []models.WebhookEntry{{Changes: []models.WebhookChange{{Value: models.WebhookValue{Messages: msgs}}}}}}
}

func text(from, body string) models.InboundMessage {
	return models.InboundMessage{From: from, ID: "wamid." + body, Type: "text", Text: &models.TextContent{Body: body}}
}

func TestVerifyWebhookToken(t *testing.T) {
	svc := NewMetaWhatsAppService("secret", "owner", &recordingClient{}, echoDispatcher{}, nil)

	challenge, err := svc.VerifyWebhookToken("subscribe", "secret", "1234")
	require.NoError(t, err)
	assert.Equal(t, "1234", challenge)

	for _, args := range [][2]string{{"", "secret"}, {"unsubscribe", "secret"}, {"subscribe", "wrong"}} {
		_, err := svc.VerifyWebhookToken(args[0], args[1], "1234")
		assert.ErrorIs(t, err, ErrVerification)
	}

	unset := NewMetaWhatsAppService("", "owner", &recordingClient{}, echoDispatcher{}, nil)
	_, err = unset.VerifyWebhookToken("subscribe", "anything", "1234")
	assert.ErrorIs(t, err, ErrVerification)
}

func TestHandleWebhook_RepliesToOwnerOnly(t *testing.T) {
	rc := &recordingClient{}
	svc := NewMetaWhatsAppService("secret", "owner", rc, echoDispatcher{}, nil)

	err := svc.HandleWebhook(context.Background(), payload(
		text("stranger", "/dates"),
		text("owner", "/summary 2025-05-01"),
		models.InboundMessage{From: "owner", Type: "image"},
	))
	require.NoError(t, err)

	require.Len(t, rc.sent, 1)
	assert.Equal(t, "owner", rc.sent[0].To)
	assert.Equal(t, "ran summary", rc.sent[0].Body)
}

func TestHandleWebhook_Failures(t *testing.T) {
	rc := &recordingClient{}
	svc := NewMetaWhatsAppService("secret", "owner", rc, echoDispatcher{err: errors.New("store offline")}, nil)

	err := svc.HandleWebhook(context.Background(), payload(text("owner", "/dates")))
	require.Error(t, err)
	require.Len(t, rc.sent, 1)
	assert.Contains(t, rc.sent[0].Body, "failed")

	rc = &recordingClient{err: errors.New("graph api down")}
	svc = NewMetaWhatsAppService("secret", "owner", rc, echoDispatcher{}, nil)
	err = svc.HandleWebhook(context.Background(), payload(text("owner", "/dates"), text("owner", "/help")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "graph api down")
	assert.Len(t, rc.sent, 2)
}
