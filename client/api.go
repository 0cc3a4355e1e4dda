package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PeakReachMedia/peakreach-go/models"
)

const sessionIDHeader = "x-session-id"

// ErrSessionRejected is returned when the server answers a validate call
// with anything other than a valid session (malformed id, unknown id).
var ErrSessionRejected = errors.New("session rejected by server")

// NetworkError wraps a transport-level failure on an API call.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// API is the HTTP transport for the funnel pipeline endpoints.
type API struct {
	baseURL    string
	httpClient *http.Client
}

func NewAPI(baseURL string) *API {
	return &API{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (a *API) postJSON(ctx context.Context, op, path, sessionID string, payload any, out any) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("failed to encode %s request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set(sessionIDHeader, sessionID)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return 0, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode %s response: %w", op, err)
		}
	}

	return resp.StatusCode, nil
}

// ValidateSession checks a stored session id against the server, returning
// the stored session record when valid.
func (a *API) ValidateSession(ctx context.Context, sessionID string) (*models.Session, error) {
	var result struct {
		Valid   bool            `json:"valid"`
		Session *models.Session `json:"session"`
	}

	status, err := a.postJSON(ctx, "session validate", "/api/v1/session/validate", sessionID, struct{}{}, &result)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK || !result.Valid || result.Session == nil {
		return nil, ErrSessionRejected
	}

	return result.Session, nil
}

// CreateSession registers a new visitor session and returns the full record
// including its generated identifier.
func (a *API) CreateSession(ctx context.Context, req models.CreateSessionRequest) (*models.Session, error) {
	var session models.Session

	status, err := a.postJSON(ctx, "session create", "/api/v1/session/create", "", req, &session)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("session create returned status %d", status)
	}

	return &session, nil
}

// CreateOrUpdateLead submits funnel lead data, associated with the session
// when a sessionID is supplied.
func (a *API) CreateOrUpdateLead(ctx context.Context, req models.LeadRequest, sessionID string) (*models.Lead, error) {
	var lead models.Lead

	status, err := a.postJSON(ctx, "lead submit", "/api/v1/leads", sessionID, req, &lead)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("lead submit returned status %d", status)
	}

	return &lead, nil
}

// RelayForm sends an arbitrary form payload to the relay. The response body
// is never inspected; only a transport failure is reported.
func (a *API) RelayForm(ctx context.Context, req models.FormRelayRequest) error {
	_, err := a.postJSON(ctx, "form relay", "/api/v1/forms/relay", "", req, nil)
	return err
}
