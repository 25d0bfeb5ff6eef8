// Package push отправляет push-уведомления через Expo Push API.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Message - одно уведомление Expo.
type Message struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Sound string            `json:"sound,omitempty"`
	Data  map[string]string `json:"data,omitempty"`
}

// Sender отправляет уведомление одному получателю.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

var ErrRejected = errors.New("push notification rejected")

type ticket struct {
	Status  string `json:"status"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

type response struct {
	Data   []ticket `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors,omitempty"`
}

// ExpoClient - HTTP-клиент Expo с ограничением частоты запросов.
type ExpoClient struct {
	url     string
	http    *http.Client
	limiter *rate.Limiter
}

// NewExpoClient создаёт клиент. perSecond <= 0 отключает ограничение.
func NewExpoClient(url string, perSecond float64, httpClient *http.Client) *ExpoClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	limit := rate.Inf
	burst := 1
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
		burst = int(perSecond)
		if burst < 1 {
			burst = 1
		}
	}
	return &ExpoClient{
		url:     url,
		http:    httpClient,
		limiter: rate.NewLimiter(limit, burst),
	}
}

func (c *ExpoClient) Send(ctx context.Context, msg Message) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("push rate limiter: %w", err)
	}

	payload, err := json.Marshal([]Message{msg})
	if err != nil {
		return fmt.Errorf("failed to encode push message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("push request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read push response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: expo returned status %d: %s", ErrRejected, resp.StatusCode, bytes.TrimSpace(body))
	}

	var parsed response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Errorf("failed to decode push response: %w", err)
	}
	if len(parsed.Errors) > 0 {
		return fmt.Errorf("%w: %s: %s", ErrRejected, parsed.Errors[0].Code, parsed.Errors[0].Message)
	}
	for _, t := range parsed.Data {
		if t.Status != "ok" {
			return fmt.Errorf("%w: %s", ErrRejected, t.Message)
		}
	}
	return nil
}
