package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	client "github.com/mamadbah2/oilledger/pkg/clients/whatsapp"
)

// maxBodyLength is the WhatsApp text body limit.
const maxBodyLength = 4096

// Notifier pushes operational messages to staff.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// ReportNotifier sends messages to a fixed recipient list through the Cloud API.
type ReportNotifier struct {
	client     client.Client
	recipients []string
	logger     *zap.Logger
}

// NewReportNotifier wires a notifier for recipients.
func NewReportNotifier(c client.Client, recipients []string, logger *zap.Logger) *ReportNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportNotifier{client: c, recipients: recipients, logger: logger}
}

// Notify sends message to every recipient, split into body-sized chunks.
// Delivery continues past a failing recipient; all failures are returned.
func (n *ReportNotifier) Notify(ctx context.Context, message string) error {
	chunks := splitMessage(message, maxBodyLength)
	if len(chunks) == 0 {
		return nil
	}

	var errs []error
	for _, to := range n.recipients {
		for _, chunk := range chunks {
			ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
			_, err := n.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{To: to, Body: chunk})
			cancel()
			if err != nil {
				n.logger.Error("failed to send report", zap.String("to", to), zap.Error(err))
				errs = append(errs, fmt.Errorf("send to %s: %w", to, err))
				break
			}
		}
	}

	if len(errs) == 0 {
		n.logger.Info("report delivered", zap.Int("recipients", len(n.recipients)), zap.Int("chunks", len(chunks)))
	}
	return errors.Join(errs...)
}

// splitMessage cuts text on line boundaries into pieces of at most limit bytes.
// A single line longer than limit is hard-split.
func splitMessage(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var (
		chunks  []string
		current strings.Builder
	)
	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, line := range strings.Split(text, "\n") {
		for len(line) > limit {
			flush()
			chunks = append(chunks, line[:limit])
			line = line[limit:]
		}
		if current.Len() > 0 && current.Len()+1+len(line) > limit {
			flush()
		}
		if current.Len() > 0 {
			current.WriteByte('\n')
		}
		current.WriteString(line)
	}
	flush()

	return chunks
}
