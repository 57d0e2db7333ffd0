package contactform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/welldanyogia/webrana-contact-relay/internal/models"
)

// DefaultTimeout bounds one request to the relay
const DefaultTimeout = 10 * time.Second

// maxResponseSize bounds how much of a relay response is read
const maxResponseSize = 64 * 1024

// ErrNetwork wraps transport failures: the relay was never reached or the
// connection broke before a status arrived.
var ErrNetwork = errors.New("network error")

// SubmitResponse is the relay's answer to a submission
type SubmitResponse struct {
	StatusCode int     `json:"-"`
	OK         bool    `json:"ok"`
	ID         *string `json:"id"`
	Error      string  `json:"error"`
	Code       string  `json:"code"`
}

// Success reports a 2xx status
func (r *SubmitResponse) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ProbeResponse is the relay's configuration probe
type ProbeResponse struct {
	OK     bool    `json:"ok"`
	HasKey bool    `json:"hasKey"`
	To     *string `json:"to"`
}

// Client talks to the relay endpoint
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a Client for endpoint, e.g.
// "https://example.com/api/contact". A nil httpClient gets DefaultTimeout.
func NewClient(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{endpoint: endpoint, httpClient: httpClient}
}

// Submit posts the request. Only transport failures are returned as
// errors; any HTTP status yields a SubmitResponse.
func (c *Client) Submit(ctx context.Context, req *models.SubmissionRequest) (*SubmitResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode submission: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	result := &SubmitResponse{StatusCode: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	// An unreadable body is treated as empty
	_ = json.Unmarshal(data, result)
	result.StatusCode = resp.StatusCode

	return result, nil
}

// Probe calls the configuration probe
func (c *Client) Probe(ctx context.Context) (*ProbeResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("probe returned status %d", resp.StatusCode)
	}

	var probe ProbeResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&probe); err != nil {
		return nil, fmt.Errorf("failed to decode probe: %w", err)
	}
	return &probe, nil
}
