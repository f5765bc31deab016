package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nerrad567/pisense/internal/infrastructure/config"
)

// defaultAppendTimeout bounds one append request when the caller's
// context carries no earlier deadline.
const defaultAppendTimeout = 10 * time.Second

// Client appends rows to a remote sheet service over HTTP.
//
// The service contract is one POST per row to /sheets/{id}/rows with a
// JSON body and bearer-token auth; 2xx acknowledges the append.
type Client struct {
	url        string
	token      string
	sheetID    string
	httpClient *http.Client
}

// NewClient creates the remote sheet driver from configuration.
func NewClient(cfg config.SheetConfig) *Client {
	return &Client{
		url:        strings.TrimRight(cfg.URL, "/"),
		token:      cfg.Token,
		sheetID:    cfg.SheetID,
		httpClient: &http.Client{Timeout: defaultAppendTimeout},
	}
}

// appendRequest is the wire format for one appended row.
type appendRequest struct {
	SheetID string `json:"sheet_id,omitempty"`
	Row     Row    `json:"row"`
}

// AppendRow posts one row to the remote sheet.
func (c *Client) AppendRow(ctx context.Context, row Row) error {
	body, err := json.Marshal(appendRequest{SheetID: c.sheetID, Row: row})
	if err != nil {
		return fmt.Errorf("%w: encoding row: %w", ErrAppendFailed, err)
	}

	endpoint := fmt.Sprintf("%s/sheets/%s/rows", c.url, c.sheetID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: building request: %w", ErrAppendFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAppendFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only body
	// Drain body to allow connection reuse
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: sheet service returned %s", ErrAppendFailed, resp.Status)
	}
	return nil
}
