package yookassa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/linemk/supershop/internal/domain/models"
)

// Config: доступ к магазину в YooKassa
type Config struct {
	BaseURL   string
	ShopID    string
	SecretKey string
	ReturnURL string
	Currency  string
	Timeout   time.Duration
}

// Client создает платежи с подтверждением через redirect
type Client struct {
	log  *slog.Logger
	cfg  Config
	http *http.Client
}

func New(log *slog.Logger, cfg Config) *Client {
	if cfg.Currency == "" {
		cfg.Currency = "RUB"
	}
	return &Client{
		log:  log,
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

type amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type confirmation struct {
	Type            string `json:"type"`
	ReturnURL       string `json:"return_url,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

type createRequest struct {
	Amount       amount       `json:"amount"`
	Confirmation confirmation `json:"confirmation"`
	Capture      bool         `json:"capture"`
	Description  string       `json:"description"`
}

type paymentResponse struct {
	ID           string       `json:"id"`
	Status       string       `json:"status"`
	Confirmation confirmation `json:"confirmation"`
}

type errorResponse struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Create регистрирует платеж; сумма всегда с двумя знаками после точки
func (c *Client) Create(ctx context.Context, sum decimal.Decimal, description string) (*models.PaymentSession, error) {
	const op = "clients.yookassa.Create"

	body, err := json.Marshal(createRequest{
		Amount:       amount{Value: sum.StringFixed(2), Currency: c.cfg.Currency},
		Confirmation: confirmation{Type: "redirect", ReturnURL: c.cfg.ReturnURL},
		Capture:      true,
		Description:  description,
	})
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("payments"), bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	req.Header.Set("Content-Type", "application/json")
	// повтор запроса с тем же ключом не создаст второй платеж
	req.Header.Set("Idempotence-Key", uuid.NewString())

	resp, err := c.do(req)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	if resp.Confirmation.ConfirmationURL == "" {
		return nil, errors.Errorf("%s: payment %s has no confirmation url", op, resp.ID)
	}

	c.log.Info("payment registered", slog.String("op", op), slog.String("externalID", resp.ID), slog.String("amount", sum.StringFixed(2)))
	return &models.PaymentSession{
		ExternalID:      resp.ID,
		Status:          resp.Status,
		ConfirmationURL: resp.Confirmation.ConfirmationURL,
	}, nil
}

// FindOne возвращает текущее состояние платежа у провайдера
func (c *Client) FindOne(ctx context.Context, externalID string) (*models.PaymentSession, error) {
	const op = "clients.yookassa.FindOne"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("payments", externalID), nil)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: payment %s", op, externalID)
	}
	return &models.PaymentSession{
		ExternalID:      resp.ID,
		Status:          resp.Status,
		ConfirmationURL: resp.Confirmation.ConfirmationURL,
	}, nil
}

func (c *Client) url(parts ...string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.Join(parts, "/")
}

func (c *Client) do(req *http.Request) (*paymentResponse, error) {
	req.SetBasicAuth(c.cfg.ShopID, c.cfg.SecretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Description != "" {
			return nil, fmt.Errorf("yookassa error (%d) %s: %s", resp.StatusCode, apiErr.Code, apiErr.Description)
		}
		return nil, fmt.Errorf("yookassa error (%d): %s", resp.StatusCode, string(raw))
	}

	var payment paymentResponse
	if err := json.Unmarshal(raw, &payment); err != nil {
		return nil, errors.Wrap(err, "failed to parse response")
	}
	if payment.ID == "" {
		return nil, errors.New("response without payment id")
	}
	return &payment, nil
}
