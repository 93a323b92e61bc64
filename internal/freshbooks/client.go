package freshbooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

const (
	defaultBaseURL = "https://api.freshbooks.com"
	// longest we will block on a Retry-After hint before surfacing the error
	maxRetryAfterWait = 30 * time.Second
)

// ClientAPI is a thin typed client over the FreshBooks accounting REST API.
// It performs no implicit retries on mutations; retry policy belongs to the
// caller (see internal/jobs).
type ClientAPI struct {
	httpClient *http.Client
	baseURL    string
	token      string
	accountID  string
	logger     *slog.Logger
}

// Config for the accounting gateway.
type Config struct {
	BaseURL   string
	Token     string
	AccountID string
	Client    *http.Client
	Logger    *slog.Logger
}

// NewClient constructs the gateway client.
func NewClient(cfg Config) (*ClientAPI, error) {
	if cfg.Token == "" || cfg.AccountID == "" {
		return nil, fmt.Errorf("freshbooks: token and account id are required")
	}
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	httpClient := cfg.Client
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ClientAPI{
		httpClient: httpClient,
		baseURL:    base,
		token:      cfg.Token,
		accountID:  cfg.AccountID,
		logger:     logger,
	}, nil
}

func (c *ClientAPI) invoicePath(id int64) string {
	return fmt.Sprintf("%s/accounting/account/%s/invoices/invoices/%d", c.baseURL, c.accountID, id)
}

func (c *ClientAPI) collectionPath(resource string) string {
	return fmt.Sprintf("%s/accounting/account/%s/%s/%s", c.baseURL, c.accountID, resource, resource)
}

// do executes one request. A 429 blocks for the Retry-After hint before
// surfacing the (retryable) error so a job-level retry lands after the
// window.
func (c *ClientAPI) do(ctx context.Context, method, url string, body any, accept string) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("freshbooks: marshal request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("freshbooks: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Api-Version", "alpha")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("freshbooks: do request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("freshbooks: read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		c.waitRetryAfter(ctx, resp.Header.Get("Retry-After"))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return raw, nil
}

func (c *ClientAPI) waitRetryAfter(ctx context.Context, hint string) {
	wait := 2 * time.Second
	if secs, err := strconv.Atoi(hint); err == nil && secs > 0 {
		wait = time.Duration(secs) * time.Second
	}
	if wait > maxRetryAfterWait {
		wait = maxRetryAfterWait
	}
	c.logger.Warn("freshbooks rate limited", "wait", wait)
	select {
	case <-ctx.Done():
	case <-time.After(wait):
	}
}

// GetInvoice fetches one remote invoice. A 404 returns (nil, nil): the
// caller decides whether a missing remote id is fatal.
func (c *ClientAPI) GetInvoice(ctx context.Context, id int64) (*Invoice, error) {
	raw, err := c.do(ctx, http.MethodGet, c.invoicePath(id), nil, "")
	if err != nil {
		if apiErr, ok := err.(*APIError); ok && apiErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	var env singleEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("freshbooks: decode invoice: %w", err)
	}
	return env.Response.Result.Invoice, nil
}

// UpdateInvoice pushes a partial invoice update.
func (c *ClientAPI) UpdateInvoice(ctx context.Context, id int64, fields map[string]any) error {
	_, err := c.do(ctx, http.MethodPut, c.invoicePath(id), map[string]any{"invoice": fields}, "")
	return err
}

// UpdateInvoiceLines replaces the full line set of a remote invoice.
func (c *ClientAPI) UpdateInvoiceLines(ctx context.Context, id int64, lines []Line) error {
	return c.UpdateInvoice(ctx, id, map[string]any{"lines": lines})
}

// VoidInvoice marks the remote invoice void. FreshBooks itself rejects
// voiding drafts; callers guard for that before calling.
func (c *ClientAPI) VoidInvoice(ctx context.Context, id int64) error {
	return c.UpdateInvoice(ctx, id, map[string]any{"action_mark_as_void": true})
}

// SendInvoiceByEmail asks the accounting platform to email the invoice.
func (c *ClientAPI) SendInvoiceByEmail(ctx context.Context, id int64, email, subject, message string) error {
	return c.UpdateInvoice(ctx, id, map[string]any{
		"action_email":     true,
		"email_recipients": []string{email},
		"email_subject":    subject,
		"email_body":       message,
	})
}

// GetInvoicePDF fetches the rendered invoice PDF. A 404 returns (nil, nil).
func (c *ClientAPI) GetInvoicePDF(ctx context.Context, id int64) ([]byte, error) {
	raw, err := c.do(ctx, http.MethodGet, c.invoicePath(id), nil, "application/pdf")
	if err != nil {
		if apiErr, ok := err.(*APIError); ok && apiErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return raw, nil
}

// ListInvoices pages through the remote invoice collection.
func (c *ClientAPI) ListInvoices(ctx context.Context, page, perPage int) ([]Invoice, int, error) {
	raw, pages, err := c.list(ctx, "invoices", page, perPage)
	if err != nil {
		return nil, 0, err
	}
	items := make([]Invoice, 0, len(raw))
	for _, r := range raw {
		var inv Invoice
		if err := json.Unmarshal(r, &inv); err != nil {
			return nil, 0, fmt.Errorf("freshbooks: decode invoice item: %w", err)
		}
		items = append(items, inv)
	}
	return items, pages, nil
}

// ListClients pages through the remote client collection.
func (c *ClientAPI) ListClients(ctx context.Context, page, perPage int) ([]Client, int, error) {
	raw, pages, err := c.list(ctx, "clients", page, perPage)
	if err != nil {
		return nil, 0, err
	}
	items := make([]Client, 0, len(raw))
	for _, r := range raw {
		var cl Client
		if err := json.Unmarshal(r, &cl); err != nil {
			return nil, 0, fmt.Errorf("freshbooks: decode client item: %w", err)
		}
		items = append(items, cl)
	}
	return items, pages, nil
}

// ListPayments pages through the remote payment collection.
func (c *ClientAPI) ListPayments(ctx context.Context, page, perPage int) ([]Payment, int, error) {
	raw, pages, err := c.list(ctx, "payments", page, perPage)
	if err != nil {
		return nil, 0, err
	}
	items := make([]Payment, 0, len(raw))
	for _, r := range raw {
		var p Payment
		if err := json.Unmarshal(r, &p); err != nil {
			return nil, 0, fmt.Errorf("freshbooks: decode payment item: %w", err)
		}
		items = append(items, p)
	}
	return items, pages, nil
}

func (c *ClientAPI) list(ctx context.Context, resource string, page, perPage int) ([]json.RawMessage, int, error) {
	url := fmt.Sprintf("%s?page=%d&per_page=%d", c.collectionPath(resource), page, perPage)
	raw, err := c.do(ctx, http.MethodGet, url, nil, "")
	if err != nil {
		return nil, 0, err
	}
	var env listEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, 0, fmt.Errorf("freshbooks: decode %s list: %w", resource, err)
	}
	result := env.Response.Result
	switch resource {
	case "invoices":
		return result.Invoices, result.Pages, nil
	case "clients":
		return result.Clients, result.Pages, nil
	case "payments":
		return result.Payments, result.Pages, nil
	}
	return nil, 0, fmt.Errorf("freshbooks: unknown resource %q", resource)
}
