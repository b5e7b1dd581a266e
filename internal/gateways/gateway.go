package gateways

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	common_models "go-syncbridge/internal/common/models"
)

// Credentials carries the per-service secrets handed to every gateway call.
// The engine never reads these from ambient storage; the connection feature
// owns persistence and passes them in explicitly.
type Credentials struct {
	Token    string `json:"token" bson:"token"`
	BaseID   string `json:"base_id,omitempty" bson:"base_id,omitempty"`     // Airtable base scope
	ObjectID string `json:"object_id,omitempty" bson:"object_id,omitempty"` // optional Attio probe object
}

// APIError is a non-2xx remote response translated into an error value the
// orchestrator can inspect for its per-record error policy.
type APIError struct {
	Service common_models.Service
	Status  int
	Body    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error: %d - %s", e.Service, e.Status, e.Body)
}

// client is shared by both gateways.
var client = &http.Client{Timeout: 30 * time.Second}

// doJSON builds the request, injects the bearer token and decodes the JSON
// response into out (out may be nil when the body is irrelevant).
func doJSON(ctx context.Context, service common_models.Service, method, url, token string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request body: %w", service, err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", service, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", service, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", service, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Service: service, Status: resp.StatusCode, Body: string(raw)}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", service, err)
		}
	}
	return nil
}
