package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// PaymentGateway внешний платёжный шлюз.
// Ядро не знает деталей оплаты: любой не-nil результат означает отказ.
type PaymentGateway interface {
	Charge(ctx context.Context, amount int64, method string) error
}

// HTTPPayment платёжный шлюз за HTTP API
type HTTPPayment struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

func NewHTTPPayment(url string, logger *zap.Logger) *HTTPPayment {
	return &HTTPPayment{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

type chargeRequest struct {
	Amount int64  `json:"amount"`
	Method string `json:"method"`
}

type chargeResponse struct {
	Approved bool   `json:"approved"`
	Reason   string `json:"reason"`
}

// Charge проводит платёж синхронно.
// Вызывается без каких-либо блокировок: оплата может занимать секунды.
func (p *HTTPPayment) Charge(ctx context.Context, amount int64, method string) error {
	body, err := json.Marshal(chargeRequest{Amount: amount, Method: method})
	if err != nil {
		return fmt.Errorf("marshal charge request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create charge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("charge request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("charge request: unexpected status %d", resp.StatusCode)
	}

	var result chargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode charge response: %w", err)
	}

	if !result.Approved {
		p.logger.Info("Payment declined", zap.String("reason", result.Reason))
		return fmt.Errorf("payment declined: %s", result.Reason)
	}

	return nil
}

// AutoApprove шлюз-заглушка для dev-режима, одобряет любой платёж
type AutoApprove struct{}

func (AutoApprove) Charge(ctx context.Context, amount int64, method string) error {
	return nil
}
