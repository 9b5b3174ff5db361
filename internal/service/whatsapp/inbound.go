package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/oilledger/internal/domain/models"
	"github.com/mamadbah2/oilledger/internal/service/commands"
	client "github.com/mamadbah2/oilledger/pkg/clients/whatsapp"
)

// InboundService answers report requests sent to the business number.
type InboundService struct {
	verifyToken string
	client      client.Client
	dispatcher  commands.Dispatcher
	allowed     map[string]bool
	logger      *zap.Logger
}

// NewInboundService wires the webhook service. Only senders listed in staff
// get an answer.
func NewInboundService(verifyToken string, c client.Client, dispatcher commands.Dispatcher, staff []string, logger *zap.Logger) *InboundService {
	if logger == nil {
		logger = zap.NewNop()
	}
	allowed := make(map[string]bool, len(staff))
	for _, number := range staff {
		allowed[strings.TrimPrefix(number, "+")] = true
	}
	return &InboundService{
		verifyToken: verifyToken,
		client:      c,
		dispatcher:  dispatcher,
		allowed:     allowed,
		logger:      logger,
	}
}

// VerifyWebhookToken validates the callback verification token.
func (s *InboundService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}
	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}
	if verifyToken != s.verifyToken {
		return "", errors.New("invalid verify token")
	}
	return challenge, nil
}

// HandleWebhook processes inbound webhook payloads and returns the first
// failure after trying every message.
func (s *InboundService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
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

func (s *InboundService) handleInboundMessage(ctx context.Context, msg models.InboundMessage) error {
	if !s.allowed[msg.From] {
		s.logger.Warn("ignoring message from unknown sender", zap.String("from", msg.From))
		return nil
	}

	text := msg.CommandText()
	if text == "" {
		s.logger.Debug("ignoring unsupported message type", zap.String("type", msg.Type))
		return nil
	}

	cmd := models.ParseCommand(text)
	s.logger.Info("parsed inbound command",
		zap.String("from", msg.From),
		zap.String("command", string(cmd.Type)),
		zap.Strings("args", cmd.Args))

	reply, err := s.dispatcher.HandleCommand(ctx, cmd, msg.From)
	switch {
	case errors.Is(err, commands.ErrInvalidArguments):
		reply = "Could not read that date. Use YYYY-MM-DD, today or yesterday."
		err = nil
	case err != nil:
		reply = "The report is not available right now, please retry later."
	}

	if sendErr := s.send(ctx, msg.From, reply); sendErr != nil {
		return errors.Join(err, sendErr)
	}
	return err
}

func (s *InboundService) send(ctx context.Context, to, text string) error {
	for _, chunk := range splitMessage(text, maxBodyLength) {
		ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
		_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{To: to, Body: chunk})
		cancel()
		if err != nil {
			return fmt.Errorf("reply to %s: %w", to, err)
		}
	}
	return nil
}
