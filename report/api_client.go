package report

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

	"github.com/odyssey-erp/proposal-wizard/internal/platform/httpx"
	"github.com/odyssey-erp/proposal-wizard/internal/proposal"
)

// GeneratePath is the rendering endpoint served by Handler.Generate.
const GeneratePath = "/api/v1/generate"

// ErrMalformedPDF is returned when the service answers 200 without a PDF body.
var ErrMalformedPDF = errors.New("received empty or invalid PDF")

// APIError is a non-2xx answer from the rendering service.
type APIError struct {
	StatusCode int
	Title      string
	Message    string
}

func (e *APIError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Title != "":
		return e.Title
	}
	return fmt.Sprintf("server error: %d", e.StatusCode)
}

// APIClient calls a remote rendering service. It satisfies wizard.Exporter.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient builds a client for the service at baseURL.
func NewAPIClient(baseURL string, httpClient *http.Client) *APIClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &APIClient{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// Generate posts doc and returns the PDF bytes.
func (c *APIClient) Generate(ctx context.Context, doc proposal.RenderDocument) ([]byte, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+GeneratePath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/pdf")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var body httpx.ErrorBody
		if data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10)); json.Unmarshal(data, &body) == nil {
			apiErr.Title = body.Error
			apiErr.Message = body.Message
		}
		return nil, apiErr
	}

	pdf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		return nil, ErrMalformedPDF
	}
	return pdf, nil
}
