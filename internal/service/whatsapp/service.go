package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/preorder/internal/domain/models"
	"github.com/mamadbah2/preorder/internal/service/commands"
	client "github.com/mamadbah2/preorder/pkg/clients/whatsapp"
)

// ErrVerification is returned when the webhook challenge does not match.
var ErrVerification = errors.New("webhook verification failed")

// MessagingService describes the operations the HTTP layer can perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
}

// MetaWhatsAppService answers owner commands sent to the shop number.
type MetaWhatsAppService struct {
	verifyToken string
	owner       string
	client      client.Client
	dispatcher  commands.Dispatcher
	logger      *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance. Messages from numbers
// other than owner are ignored.
func NewMetaWhatsAppService(verifyToken, owner string, client client.Client, dispatcher commands.Dispatcher, logger *zap.Logger) *MetaWhatsAppService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetaWhatsAppService{
		verifyToken: verifyToken,
		owner:       owner,
		client:      client,
		dispatcher:  dispatcher,
		logger:      logger,
	}
}

// VerifyWebhookToken validates the callback verification token.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", fmt.Errorf("%w: missing mode or verify token", ErrVerification)
	}
	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("%w: unsupported hub.mode %s", ErrVerification, mode)
	}
	if s.verifyToken == "" || verifyToken != s.verifyToken {
		return "", fmt.Errorf("%w: invalid verify token", ErrVerification)
	}
	return challenge, nil
}

// HandleWebhook processes inbound webhook payloads and returns the first failure.
func (s *MetaWhatsAppService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	var firstErr error

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if err := s.handleInboundMessage(ctx, msg); err != nil {
					s.logger.Error("failed to handle inbound message", zap.Error(err), zap.String("message_id", msg.ID))
					if firstErr == nil {
						firstErr = err
					}
				}
			}
		}
	}

	return firstErr
}

func (s *MetaWhatsAppService) handleInboundMessage(ctx context.Context, msg models.InboundMessage) error {
	if msg.From != s.owner {
		s.logger.Info("ignoring message from unknown sender", zap.String("from", msg.From))
		return nil
	}

	text := msg.Body()
	if text == "" {
		s.logger.Debug("ignoring message without text", zap.String("type", msg.Type))
		return nil
	}

	cmd := models.ParseCommand(text)
	s.logger.Info("parsed inbound command", zap.String("command", string(cmd.Type)), zap.Strings("args", cmd.Args))

	reply, err := s.dispatcher.HandleCommand(ctx, cmd, msg.From)
	if err != nil {
		reply = "Sorry, that command failed. Please try again later."
		s.logger.Error("command failed", zap.Error(err))
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, sendErr := s.client.SendText(ctxWithTimeout, msg.From, reply); sendErr != nil {
		return fmt.Errorf("reply to %s: %w", msg.From, sendErr)
	}
	return err
}
