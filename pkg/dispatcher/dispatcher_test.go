package dispatcher

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gseal/gseal-lite/pkg/httpx"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestScheduleDeliversAfterDelay(t *testing.T) {
	var mu sync.Mutex
	var bodies [][]byte
	var deliveredAt time.Time
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, body)
		deliveredAt = time.Now()
		mu.Unlock()
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "received"})
	})

	client := httpx.NewLoopbackClient(handler, 10*time.Second)
	d := New(client, 50*time.Millisecond, httpx.InternalBaseURL+"/app-webhook-listener")
	logBuf := &syncBuffer{}
	d.infoLog = log.New(logBuf, "", 0)

	payload := map[string]any{"event": "mock.document.completed", "data": map[string]any{"k": "v"}}
	start := time.Now()
	id := d.Schedule(payload)
	if id == "" {
		t.Fatal("expected a delivery ID")
	}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(bodies) == 1
	}, "delivery never arrived")

	mu.Lock()
	elapsed := deliveredAt.Sub(start)
	body := bodies[0]
	mu.Unlock()

	if elapsed < 50*time.Millisecond {
		t.Fatalf("delivered before the delay elapsed: %s", elapsed)
	}

	var got map[string]any
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode delivered body: %v", err)
	}
	if !reflect.DeepEqual(got, payload) {
		t.Fatalf("unexpected delivered payload: %#v", got)
	}

	waitFor(t, func() bool {
		return strings.Contains(logBuf.String(), "webhook POST completed with status 200")
	}, "completion was not logged")
}

func TestScheduleAssignsDistinctIDs(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	client := httpx.NewLoopbackClient(handler, time.Second)
	d := New(client, time.Millisecond, httpx.InternalBaseURL+"/app-webhook-listener")
	d.infoLog = log.New(io.Discard, "", 0)

	a := d.Schedule(map[string]any{})
	b := d.Schedule(map[string]any{})
	if a == b {
		t.Fatalf("expected distinct delivery IDs, got %s twice", a)
	}
}

func TestNonJSONResponseLoggedAsRawText(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("plain text ack"))
	})
	client := httpx.NewLoopbackClient(handler, time.Second)
	d := New(client, time.Millisecond, httpx.InternalBaseURL+"/app-webhook-listener")
	logBuf := &syncBuffer{}
	d.infoLog = log.New(logBuf, "", 0)

	d.Schedule(map[string]any{"event": "x"})

	waitFor(t, func() bool {
		return strings.Contains(logBuf.String(), "plain text ack")
	}, "raw response text was not logged")
}

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func TestDeliveryFailureIsLoggedAndDropped(t *testing.T) {
	client := &http.Client{Transport: failingTransport{}}
	d := New(client, time.Millisecond, httpx.InternalBaseURL+"/app-webhook-listener")
	d.infoLog = log.New(io.Discard, "", 0)
	errBuf := &syncBuffer{}
	d.errLog = log.New(errBuf, "", 0)

	d.Schedule(map[string]any{"event": "x"})

	waitFor(t, func() bool {
		return strings.Contains(errBuf.String(), "webhook delivery failed")
	}, "delivery failure was not logged")
}
