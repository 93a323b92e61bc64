package freshbooks

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Invoice is the remote accounting invoice resource. Status uses the
// remote numeric encoding (1 draft, 2 sent, 3 viewed, 4 paid, 5 auto-paid).
type Invoice struct {
	ID          int64   `json:"id"`
	ClientID    int64   `json:"customerid"`
	Number      string  `json:"invoice_number"`
	Status      int     `json:"status"`
	Amount      float64 `json:"amount"`
	Outstanding float64 `json:"outstanding"`
	DueDate     string  `json:"due_date"`
	Email       string  `json:"email"`
	Lines       []Line  `json:"lines"`
}

// StatusString renders the numeric status for normalization.
func (i Invoice) StatusString() string {
	return strconv.Itoa(i.Status)
}

// LineTotal sums unit_cost * qty over all lines.
func (i Invoice) LineTotal() float64 {
	var total float64
	for _, l := range i.Lines {
		total += l.UnitCost * l.Qty
	}
	return total
}

// Line is a single invoice line item. Discount lines carry a negative
// unit cost.
type Line struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	UnitCost    float64 `json:"unit_cost"`
	Qty         float64 `json:"qty"`
}

// Client is the remote accounting client (customer) resource.
type Client struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Organization string `json:"organization"`
	FirstName    string `json:"fname"`
	LastName     string `json:"lname"`
}

// Payment is the remote payment resource.
type Payment struct {
	ID        int64   `json:"id"`
	InvoiceID int64   `json:"invoiceid"`
	Amount    float64 `json:"amount"`
	Date      string  `json:"date"`
}

// listEnvelope is the paginated collection wrapper shared by every list
// endpoint: {"response": {"result": {<items>, "page": n, "pages": n}}}.
type listEnvelope struct {
	Response struct {
		Result struct {
			Invoices []json.RawMessage `json:"invoices"`
			Clients  []json.RawMessage `json:"clients"`
			Payments []json.RawMessage `json:"payments"`
			Page     int               `json:"page"`
			Pages    int               `json:"pages"`
			PerPage  int               `json:"per_page"`
			Total    int               `json:"total"`
		} `json:"result"`
	} `json:"response"`
}

type singleEnvelope struct {
	Response struct {
		Result struct {
			Invoice *Invoice `json:"invoice"`
			Client  *Client  `json:"client"`
			Payment *Payment `json:"payment"`
		} `json:"result"`
	} `json:"response"`
}

// APIError carries the HTTP status and raw body of a failed gateway call.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("freshbooks: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the failure is transient (rate limit or
// server-side). Validation and auth failures are permanent.
func (e *APIError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// InvalidRemoteID reports whether the remote rejected a stored invoice id;
// callers clear the cached id and re-resolve rather than failing hard.
func (e *APIError) InvalidRemoteID() bool {
	return e.StatusCode == 404 || e.StatusCode == 422
}
