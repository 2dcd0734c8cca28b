// Package sms sends text messages through sms.ir.
package sms

import (
	"context"
	"fmt"

	"github.com/arsmn/go-smsir/smsir"

	"github.com/Alijeyrad/medibook_backend/config"
)

// messageParam is the single parameter the configured template must expose.
const messageParam = "message"

type Client struct {
	client     *smsir.Client
	templateID string
	enabled    bool
}

// NewFromConfig returns a disabled client when SMS is turned off.
func NewFromConfig(cfg config.SMSConfig) (*Client, error) {
	if !cfg.Enabled {
		return &Client{enabled: false}, nil
	}
	if cfg.SMSIR.APIKey == "" {
		return nil, fmt.Errorf("sms.ir API key required when SMS enabled")
	}
	if cfg.SMSIR.TemplateID == "" {
		return nil, fmt.Errorf("sms.ir template ID required when SMS enabled")
	}

	return &Client{
		client:     smsir.NewClient().WithAuthentication(cfg.SMSIR.APIKey, cfg.SMSIR.SecretKey),
		templateID: cfg.SMSIR.TemplateID,
		enabled:    true,
	}, nil
}

// Send delivers text to mobile. It is a no-op on a disabled client.
func (c *Client) Send(ctx context.Context, mobile, text string) error {
	if !c.enabled {
		return nil
	}
	if mobile == "" {
		return fmt.Errorf("phone number is required")
	}
	if text == "" {
		return fmt.Errorf("message is required")
	}

	req := &smsir.UltraFastSendRequest{
		Mobile:     mobile,
		TemplateID: c.templateID,
		Parameters: []smsir.UltraFastParameter{
			{Key: messageParam, Value: text},
		},
	}
	if _, err := c.client.Verification.UltraFastSend(ctx, req); err != nil {
		return fmt.Errorf("sms.ir send failed: %w", err)
	}
	return nil
}

func (c *Client) IsEnabled() bool {
	return c.enabled
}
