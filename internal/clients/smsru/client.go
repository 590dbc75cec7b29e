package smsru

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Client отправляет SMS через HTTP API sms.ru
type Client struct {
	log     *slog.Logger
	baseURL string
	apiID   string
	http    *http.Client
}

func New(log *slog.Logger, baseURL, apiID string, timeout time.Duration) *Client {
	return &Client{
		log:     log,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiID:   apiID,
		http:    &http.Client{Timeout: timeout},
	}
}

type sendResponse struct {
	Status     string `json:"status"`
	StatusCode int    `json:"status_code"`
	StatusText string `json:"status_text"`
}

// Send отправляет сообщение; статус ответа, отличный от OK, считается ошибкой
func (c *Client) Send(ctx context.Context, phone, message string) error {
	const op = "clients.smsru.Send"

	q := url.Values{}
	q.Set("api_id", c.apiID)
	q.Set("to", phone)
	q.Set("msg", message)
	q.Set("json", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/sms/send?"+q.Encode(), nil)
	if err != nil {
		return errors.Wrap(err, op)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s: request failed", op)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected http status %d", op, resp.StatusCode)
	}

	var result sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return errors.Wrapf(err, "%s: failed to parse response", op)
	}
	if result.Status != "OK" {
		c.log.Warn("sms not sent", slog.String("op", op), slog.String("phone", phone), slog.String("status_text", result.StatusText))
		return fmt.Errorf("%s: sms.ru error %d: %s", op, result.StatusCode, result.StatusText)
	}

	c.log.Info("sms sent", slog.String("op", op), slog.String("phone", phone))
	return nil
}
