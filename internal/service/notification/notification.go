package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Alijeyrad/medibook_backend/config"
	"github.com/Alijeyrad/medibook_backend/pkg/util/phone"
)

const (
	ChannelSMS = "sms"
	ChannelLog = "log"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// Ack reports where a message went. Delivered is false when SMS is turned
// off and the message was only logged.
type Ack struct {
	Recipient string    `json:"recipient"`
	Channel   string    `json:"channel"`
	Delivered bool      `json:"delivered"`
	SentAt    time.Time `json:"sent_at"`
}

// Sender is the SMS transport. *sms.Client satisfies it.
type Sender interface {
	Send(ctx context.Context, mobile, text string) error
	IsEnabled() bool
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Send(ctx context.Context, recipientPhone, message string) (*Ack, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type notificationService struct {
	sender  Sender
	region  string
	timeout time.Duration
}

func New(sender Sender, cfg *config.Config) Service {
	timeout := time.Duration(cfg.Notification.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &notificationService{sender: sender, region: cfg.Identity.DefaultRegion, timeout: timeout}
}

func (s *notificationService) Send(ctx context.Context, recipientPhone, message string) (*Ack, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: empty message", ErrDeliveryFailed)
	}
	num, err := phone.Parse(recipientPhone, s.region)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeliveryFailed, ErrInvalidRecipient)
	}

	if s.sender == nil || !s.sender.IsEnabled() {
		slog.Info("notification: sms disabled, message logged", "to", num.E164, "message", message)
		return &Ack{Recipient: num.E164, Channel: ChannelLog, SentAt: time.Now()}, nil
	}

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.sender.Send(cctx, num.E164, message); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(cctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrGatewayTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return &Ack{Recipient: num.E164, Channel: ChannelSMS, Delivered: true, SentAt: time.Now()}, nil
}
