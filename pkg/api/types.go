package api

import "encoding/json"

// DefaultEvent is the event name synthesized for webhook payloads when
// the caller does not supply an override.
const DefaultEvent = "mock.document.completed"

// StartTestRequest is the payload accepted by the /start-test endpoint.
type StartTestRequest struct {
	MockPayload    map[string]any `json:"mock_payload,omitempty"`
	WebhookPayload map[string]any `json:"webhook_payload,omitempty"`
}

// ApplyDefaults fills in the demo document payload when none was given.
func (r *StartTestRequest) ApplyDefaults() {
	if r.MockPayload == nil {
		r.MockPayload = map[string]any{"document_id": "demo-document"}
	}
}

// AsMap returns the request as a plain mapping, omitting unset fields.
func (r StartTestRequest) AsMap() map[string]any {
	m := map[string]any{"mock_payload": r.MockPayload}
	if r.WebhookPayload != nil {
		m["webhook_payload"] = r.WebhookPayload
	}
	return m
}

// MockAPIRequest is the body posted to the /mock-gseal-api endpoint.
type MockAPIRequest struct {
	MockPayload    map[string]any `json:"mock_payload,omitempty"`
	WebhookPayload map[string]any `json:"webhook_payload,omitempty"`
}

// ApplyDefaults normalizes a missing mock payload to an empty mapping.
func (r *MockAPIRequest) ApplyDefaults() {
	if r.MockPayload == nil {
		r.MockPayload = map[string]any{}
	}
}

// AsMap returns the request as a plain mapping, omitting unset fields.
func (r MockAPIRequest) AsMap() map[string]any {
	m := map[string]any{"mock_payload": r.MockPayload}
	if r.WebhookPayload != nil {
		m["webhook_payload"] = r.WebhookPayload
	}
	return m
}

// WebhookNotification is the payload consumed by /app-webhook-listener.
type WebhookNotification struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data"`
}

// ApplyDefaults fills the default event name and an empty data mapping.
func (n *WebhookNotification) ApplyDefaults() {
	if n.Event == "" {
		n.Event = DefaultEvent
	}
	if n.Data == nil {
		n.Data = map[string]any{}
	}
}

// AsMap returns the notification as a plain mapping.
func (n WebhookNotification) AsMap() map[string]any {
	return map[string]any{"event": n.Event, "data": n.Data}
}

// StartTestResponse is returned by /start-test on success.
type StartTestResponse struct {
	Status          string          `json:"status"`
	MockAPIResponse json.RawMessage `json:"mock_api_response"`
}

// MockAPIResponse acknowledges a scheduled webhook dispatch.
type MockAPIResponse struct {
	Status         string         `json:"status"`
	WebhookPayload map[string]any `json:"webhook_payload"`
}

// ListenerResponse echoes the notification received by the listener.
type ListenerResponse struct {
	Status  string         `json:"status"`
	Payload map[string]any `json:"payload"`
}
