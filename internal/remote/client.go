// Package remote provides the HTTP client for the owner-scoped ledger
// collections and the settings store.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tallyledger/tally/internal/common"
	"github.com/tallyledger/tally/internal/service"
	"github.com/tallyledger/tally/internal/source"
)

// Config holds remote store configuration.
type Config struct {
	BaseURL string
	Owner   string
	Timeout time.Duration
}

// Validate ensures all required fields are present.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: remote base URL is required", common.ErrMissingConfig)
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("%w: bad remote base URL %s", common.ErrInvalidConfig, c.BaseURL)
	}
	if c.Owner == "" {
		return fmt.Errorf("%w: remote owner id is required", common.ErrMissingConfig)
	}
	return nil
}

// Client talks to the remote ledger store. It implements LedgerSource,
// LedgerWriter, and SettingsStore.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	retryOpts  service.RetryOptions
	baseURL    string
	owner      string
}

// NewClient creates a new remote store client with the given configuration.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		owner:   cfg.Owner,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: slog.Default().With("component", "remote"),
		retryOpts: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     10 * time.Second,
			Multiplier:   2.0,
		},
	}, nil
}

// ListExpenses fetches one reverse-chronological page of manual expenses.
func (c *Client) ListExpenses(ctx context.Context, offset, count int) ([]source.ManualRecord, error) {
	var records []source.ManualRecord
	err := c.getJSON(ctx, c.collectionURL("expenses", offset, count), &records)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return records, nil
}

// ListMessages fetches one reverse-chronological page of message-derived
// transactions.
func (c *Client) ListMessages(ctx context.Context, offset, count int) ([]source.MessageRecord, error) {
	var records []source.MessageRecord
	err := c.getJSON(ctx, c.collectionURL("messages", offset, count), &records)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return records, nil
}

// InsertExpense persists a single manual expense and returns the stored
// record with its canonical id and timestamp.
func (c *Client) InsertExpense(ctx context.Context, rec source.ManualRecord) (source.ManualRecord, error) {
	var stored source.ManualRecord
	err := c.sendJSON(ctx, http.MethodPost, c.ownerURL("expenses"), rec, &stored)
	if err != nil {
		return source.ManualRecord{}, fmt.Errorf("failed to insert expense: %w", err)
	}
	return stored, nil
}

// InsertExpenses persists a batch of manual expenses.
func (c *Client) InsertExpenses(ctx context.Context, recs []source.ManualRecord) ([]source.ManualRecord, error) {
	var stored []source.ManualRecord
	err := c.sendJSON(ctx, http.MethodPost, c.ownerURL("expenses/batch"), recs, &stored)
	if err != nil {
		return nil, fmt.Errorf("failed to insert expense batch: %w", err)
	}
	return stored, nil
}

// DeleteExpense removes a manual expense by id.
func (c *Client) DeleteExpense(ctx context.Context, id string) error {
	if err := c.sendJSON(ctx, http.MethodDelete, c.ownerURL("expenses/"+url.PathEscape(id)), nil, nil); err != nil {
		return fmt.Errorf("failed to delete expense %s: %w", id, err)
	}
	return nil
}

// DeleteMessage removes a message-derived transaction by its raw (un-namespaced) id.
func (c *Client) DeleteMessage(ctx context.Context, id string) error {
	if err := c.sendJSON(ctx, http.MethodDelete, c.ownerURL("messages/"+url.PathEscape(id)), nil, nil); err != nil {
		return fmt.Errorf("failed to delete message %s: %w", id, err)
	}
	return nil
}

func (c *Client) ownerURL(path string) string {
	return fmt.Sprintf("%s/owners/%s/%s", c.baseURL, url.PathEscape(c.owner), path)
}

func (c *Client) collectionURL(collection string, offset, count int) string {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("count", strconv.Itoa(count))
	return c.ownerURL(collection) + "?" + q.Encode()
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	return c.do(ctx, http.MethodGet, rawURL, nil, out)
}

func (c *Client) sendJSON(ctx context.Context, method, rawURL string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}
	return c.do(ctx, method, rawURL, payload, out)
}

// do performs one HTTP exchange with retries. Connection failures and 5xx
// responses are retryable; any other non-2xx status is not.
func (c *Client) do(ctx context.Context, method, rawURL string, payload []byte, out any) error {
	return common.WithRetry(ctx, func() error {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
		if err != nil {
			return &common.RetryableError{Err: err, Retryable: false}
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Warn("Remote request failed", "method", method, "url", rawURL, "error", err)
			return &common.RetryableError{
				Err:       fmt.Errorf("%w: %v", common.ErrRemoteUnavailable, err),
				Retryable: true,
			}
		}
		defer func() {
			_ = resp.Body.Close()
		}()

		if resp.StatusCode == http.StatusNotFound {
			return &common.RetryableError{Err: common.ErrNotFound, Retryable: false}
		}
		if resp.StatusCode >= 500 {
			respBody, _ := io.ReadAll(resp.Body)
			return &common.RetryableError{
				Err:       fmt.Errorf("remote store error: %d - %s", resp.StatusCode, string(respBody)),
				Retryable: true,
			}
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			respBody, _ := io.ReadAll(resp.Body)
			return &common.RetryableError{
				Err:       fmt.Errorf("remote store error: %d - %s", resp.StatusCode, string(respBody)),
				Retryable: false,
			}
		}

		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &common.RetryableError{
				Err:       fmt.Errorf("failed to decode response: %w", err),
				Retryable: false,
			}
		}
		return nil
	}, c.retryOpts)
}

// Ensure Client implements the service contracts.
var (
	_ service.LedgerSource  = (*Client)(nil)
	_ service.LedgerWriter  = (*Client)(nil)
	_ service.SettingsStore = (*Client)(nil)
)
