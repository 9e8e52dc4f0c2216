package sheets

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
)

// APIClient is a client for the Apps Script web app backing the shared
// spreadsheet. Every call carries the shared secret as a query parameter.
type APIClient struct {
	httpClient *http.Client
	BaseURL    string
	secret     string
}

// NewClient creates a new sheet backend client.
func NewClient(baseURL, secret string) SheetsClient {
	return &APIClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		BaseURL:    baseURL,
		secret:     secret,
	}
}

// Ensure APIClient implements the SheetsClient interface.
var _ SheetsClient = (*APIClient)(nil)

// Get fetches all rows of the given entity tab.
func (c *APIClient) Get(entity Entity) ([]Row, error) {
	reqURL := fmt.Sprintf("%s?secret=%s&entity=%s", c.BaseURL, url.QueryEscape(c.secret), entity)

	log.Debug("Fetching rows from sheet backend", "entity", entity)
	resp, err := c.httpClient.Get(reqURL)
	if err != nil {
		return nil, fmt.Errorf("error fetching %s from sheet backend: %w", entity, err)
	}
	defer resp.Body.Close()

	env, err := decodeEnvelope(resp)
	if err != nil {
		return nil, fmt.Errorf("error decoding %s response: %w", entity, err)
	}

	log.Info("Fetched rows from sheet backend", "entity", entity, "count", len(env.Rows))
	return env.Rows, nil
}

// Upsert replaces the rows of the given entity tab. The Apps Script runtime
// only accepts text/plain bodies, so the JSON payload is sent as plain text.
func (c *APIClient) Upsert(entity Entity, rows []Row) error {
	body, err := json.Marshal(pushRequest{Entity: entity, Rows: rows})
	if err != nil {
		return fmt.Errorf("error marshalling %s rows: %w", entity, err)
	}

	reqURL := fmt.Sprintf("%s?secret=%s", c.BaseURL, url.QueryEscape(c.secret))
	resp, err := c.httpClient.Post(reqURL, "text/plain;charset=UTF-8", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("error pushing %s to sheet backend: %w", entity, err)
	}
	defer resp.Body.Close()

	if _, err := decodeEnvelope(resp); err != nil {
		return fmt.Errorf("error decoding %s push response: %w", entity, err)
	}

	log.Info("Pushed rows to sheet backend", "entity", entity, "count", len(rows))
	return nil
}

func decodeEnvelope(resp *http.Response) (*envelope, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, raw)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("error unmarshalling response: %w", err)
	}
	if !env.OK {
		return nil, fmt.Errorf("sheet backend error: %s", env.Error)
	}
	return &env, nil
}
