package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/gseal/gseal-lite/pkg/logx"
)

// Dispatcher delivers webhook payloads to the listener endpoint after a
// fixed delay. Deliveries are fire-and-forget: nothing is reported back
// to the caller, outcomes are visible only in logs.
type Dispatcher struct {
	client    *http.Client
	delay     time.Duration
	targetURL string
	infoLog   *log.Logger
	errLog    *log.Logger
}

// New creates a dispatcher posting to targetURL through client.
func New(client *http.Client, delay time.Duration, targetURL string) *Dispatcher {
	return &Dispatcher{
		client:    client,
		delay:     delay,
		targetURL: targetURL,
		infoLog:   logx.New("INFO", "dispatcher"),
		errLog:    logx.NewError("dispatcher"),
	}
}

// Schedule detaches a delivery for payload and returns its delivery ID.
// The originating request does not wait for the delivery to complete.
func (d *Dispatcher) Schedule(payload map[string]any) string {
	id := uuid.NewString()
	go d.run(id, payload)
	return id
}

func (d *Dispatcher) run(id string, payload map[string]any) {
	d.infoLog.Printf("[%s] waiting %s before dispatching webhook", id, d.delay)
	time.Sleep(d.delay)
	if err := d.deliver(id, payload); err != nil {
		d.errLog.Printf("[%s] webhook delivery failed: %v", id, err)
	}
}

func (d *Dispatcher) deliver(id string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, d.targetURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("read webhook response: %w", err)
	}

	var parsed any
	if json.Unmarshal(raw, &parsed) != nil {
		parsed = string(raw)
	}
	d.infoLog.Printf("[%s] webhook POST completed with status %d and payload %v", id, resp.StatusCode, parsed)
	return nil
}
