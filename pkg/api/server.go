package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gseal/gseal-lite/pkg/config"
	"github.com/gseal/gseal-lite/pkg/dispatcher"
	"github.com/gseal/gseal-lite/pkg/httpx"
	"github.com/gseal/gseal-lite/pkg/logx"
)

// Server hosts the three simulated endpoints and the loopback client
// they use to reach each other.
type Server struct {
	cfg        config.ServerConfig
	router     *chi.Mux
	client     *http.Client
	dispatcher *dispatcher.Dispatcher

	triggerLog  *log.Logger
	mockLog     *log.Logger
	listenerLog *log.Logger
}

// NewServer wires the router, the loopback client over that router, and
// the dispatcher posting back through it.
func NewServer(cfg config.ServerConfig) *Server {
	s := &Server{
		cfg:         cfg,
		triggerLog:  logx.New("INFO", "start-test"),
		mockLog:     logx.New("INFO", "mock-gseal-api"),
		listenerLog: logx.New("INFO", "webhook-listener"),
	}
	s.router = s.routes()
	s.client = httpx.NewLoopbackClient(s.router, cfg.InternalTimeout)
	s.dispatcher = dispatcher.New(s.client, cfg.DispatchDelay, httpx.InternalBaseURL+"/app-webhook-listener")
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(timeoutMiddleware(60 * time.Second))

	router.Get("/healthz", healthzHandler)
	router.Post("/start-test", s.handleStartTest)
	router.Post("/mock-gseal-api", s.handleMockAPI)
	router.Post("/app-webhook-listener", s.handleListener)

	return router
}

func timeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func healthzHandler(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStartTest forwards the (defaulted) request to the mock API and
// relays its response. A non-success upstream status is propagated.
func (s *Server) handleStartTest(w http.ResponseWriter, r *http.Request) {
	var req StartTestRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON payload: %v", err))
		return
	}
	req.ApplyDefaults()

	reqMap := req.AsMap()
	s.triggerLog.Printf("received /start-test request: %v", reqMap)

	body, err := json.Marshal(reqMap)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, fmt.Sprintf("marshal mock api request: %v", err))
		return
	}

	httpReq, err := http.NewRequestWithContext(r.Context(), http.MethodPost, httpx.InternalBaseURL+"/mock-gseal-api", bytes.NewReader(body))
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, fmt.Sprintf("create mock api request: %v", err))
		return
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		httpx.WriteError(w, http.StatusBadGateway, fmt.Sprintf("mock api call failed: %v", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		httpx.WriteError(w, http.StatusBadGateway,
			fmt.Sprintf("mock api returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail))))
		return
	}

	var mockResp json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&mockResp); err != nil {
		httpx.WriteError(w, http.StatusBadGateway, fmt.Sprintf("decode mock api response: %v", err))
		return
	}

	httpx.WriteJSON(w, http.StatusOK, StartTestResponse{
		Status:          "mock_request_dispatched",
		MockAPIResponse: mockResp,
	})
}

// handleMockAPI simulates the remote GSeal API: it acknowledges
// immediately and detaches the webhook delivery.
func (s *Server) handleMockAPI(w http.ResponseWriter, r *http.Request) {
	var req MockAPIRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON payload: %v", err))
		return
	}
	req.ApplyDefaults()

	s.mockLog.Printf("mock gseal api received payload: %v", req.AsMap())

	payload := req.WebhookPayload
	if payload == nil {
		payload = map[string]any{
			"event": DefaultEvent,
			"data": map[string]any{
				"status":           "completed",
				"original_payload": req.MockPayload,
			},
		}
	}

	s.dispatcher.Schedule(payload)

	httpx.WriteJSON(w, http.StatusOK, MockAPIResponse{
		Status:         "webhook_scheduled",
		WebhookPayload: payload,
	})
}

// handleListener receives the simulated webhook and echoes it back.
func (s *Server) handleListener(w http.ResponseWriter, r *http.Request) {
	var notification WebhookNotification
	if err := httpx.DecodeJSON(r, &notification); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON payload: %v", err))
		return
	}
	notification.ApplyDefaults()

	payload := notification.AsMap()
	s.listenerLog.Printf("webhook listener received payload: %v", payload)

	httpx.WriteJSON(w, http.StatusOK, ListenerResponse{
		Status:  "received",
		Payload: payload,
	})
}
