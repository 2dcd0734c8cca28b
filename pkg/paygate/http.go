package paygate

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Alijeyrad/medibook_backend/config"
)

const (
	statusSucceeded = "succeeded"
	statusDeclined  = "declined"
	statusRefunded  = "refunded"
)

// HTTPClient talks to a JSON payment API exposing /charges and /refunds.
type HTTPClient struct {
	merchantID string
	client     *resty.Client
}

func NewHTTPClient(cfg config.PaymentHTTPConfig, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		c.SetAuthToken(cfg.APIKey)
	}
	return &HTTPClient{merchantID: cfg.MerchantID, client: c}
}

type chargeBody struct {
	MerchantID string     `json:"merchant_id"`
	Amount     int64      `json:"amount"`
	Currency   string     `json:"currency"`
	Card       Instrument `json:"card"`
	Reference  string     `json:"reference,omitempty"`
}

type chargeResponse struct {
	Status        string    `json:"status"`
	TransactionID string    `json:"transaction_id"`
	Code          string    `json:"code"`
	Message       string    `json:"message"`
	ProcessedAt   time.Time `json:"processed_at"`
}

func (c *HTTPClient) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if err := validateCharge(req); err != nil {
		return nil, err
	}

	var out chargeResponse
	var apiErr APIError
	r := c.client.R().
		SetContext(ctx).
		SetBody(chargeBody{
			MerchantID: c.merchantID,
			Amount:     req.Amount,
			Currency:   req.Currency,
			Card:       Instrument{Number: req.Instrument.Digits(), Holder: req.Instrument.Holder, Expiry: req.Instrument.Expiry},
			Reference:  req.Reference,
		}).
		SetResult(&out).
		SetError(&apiErr)
	if req.Reference != "" {
		r.SetHeader("Idempotency-Key", req.Reference)
	}

	resp, err := r.Post("/charges")
	if err != nil {
		return nil, fmt.Errorf("paygate charge: %w", err)
	}
	if resp.IsError() {
		apiErr.StatusCode = resp.StatusCode()
		if resp.StatusCode() == http.StatusPaymentRequired {
			return nil, fmt.Errorf("%w: %s", ErrDeclined, apiErr.Message)
		}
		return nil, fmt.Errorf("%w: %w", ErrUnexpectedResponse, &apiErr)
	}

	switch out.Status {
	case statusSucceeded:
	case statusDeclined:
		return nil, fmt.Errorf("%w: %s", ErrDeclined, out.Message)
	default:
		return nil, fmt.Errorf("%w (status=%q)", ErrUnexpectedResponse, out.Status)
	}
	if out.TransactionID == "" {
		return nil, fmt.Errorf("%w: missing transaction id", ErrUnexpectedResponse)
	}

	processed := out.ProcessedAt
	if processed.IsZero() {
		processed = time.Now()
	}
	return &ChargeResult{Success: true, TransactionRef: out.TransactionID, ProcessedAt: processed}, nil
}

type refundBody struct {
	MerchantID    string `json:"merchant_id"`
	TransactionID string `json:"transaction_id"`
	Amount        int64  `json:"amount"`
}

type refundResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (c *HTTPClient) Refund(ctx context.Context, transactionRef string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	var out refundResponse
	var apiErr APIError
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Idempotency-Key", "refund-"+transactionRef).
		SetBody(refundBody{MerchantID: c.merchantID, TransactionID: transactionRef, Amount: amount}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/refunds")
	if err != nil {
		return fmt.Errorf("paygate refund: %w", err)
	}
	if resp.IsError() {
		apiErr.StatusCode = resp.StatusCode()
		return fmt.Errorf("%w: %w", ErrUnexpectedResponse, &apiErr)
	}
	if out.Status != statusRefunded {
		return fmt.Errorf("%w (status=%q)", ErrUnexpectedResponse, out.Status)
	}
	return nil
}
