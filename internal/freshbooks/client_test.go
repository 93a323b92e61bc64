package freshbooks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *ClientAPI {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(Config{
		BaseURL:   server.URL,
		Token:     "test-token",
		AccountID: "AB12cd",
		Client:    server.Client(),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestGetInvoice(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/accounting/account/AB12cd/invoices/invoices/42" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Fatalf("unexpected auth header %q", got)
		}
		fmt.Fprint(w, `{"response":{"result":{"invoice":{"id":42,"status":2,"amount":120.00,"outstanding":120.00,"lines":[{"name":"Repair","unit_cost":100,"qty":1}]}}}}`)
	})

	inv, err := client.GetInvoice(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetInvoice: %v", err)
	}
	if inv == nil || inv.ID != 42 {
		t.Fatalf("unexpected invoice %+v", inv)
	}
	if inv.Status != 2 {
		t.Fatalf("expected status 2, got %d", inv.Status)
	}
	if got := inv.LineTotal(); got != 100 {
		t.Fatalf("expected line total 100, got %v", got)
	}
}

func TestGetInvoiceNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})
	inv, err := client.GetInvoice(context.Background(), 9)
	if err != nil {
		t.Fatalf("expected nil error on 404, got %v", err)
	}
	if inv != nil {
		t.Fatalf("expected nil invoice on 404, got %+v", inv)
	}
}

func TestUpdateInvoiceServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	err := client.UpdateInvoice(context.Background(), 1, map[string]any{"status": 2})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if !apiErr.Retryable() {
		t.Fatal("expected 500 to be retryable")
	}
	if apiErr.InvalidRemoteID() {
		t.Fatal("500 must not be treated as invalid remote id")
	}
}

func TestRateLimitHonorsRetryAfter(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "1")
		http.Error(w, "slow down", http.StatusTooManyRequests)
	})

	start := time.Now()
	err := client.UpdateInvoice(context.Background(), 1, map[string]any{"status": 2})
	elapsed := time.Since(start)

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 APIError, got %v", err)
	}
	if !apiErr.Retryable() {
		t.Fatal("expected 429 to be retryable")
	}
	if elapsed < time.Second {
		t.Fatalf("expected blocking backoff of at least 1s, waited %v", elapsed)
	}
}

func TestListInvoicesPagination(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("per_page"); got != "100" {
			t.Fatalf("unexpected per_page %q", got)
		}
		fmt.Fprint(w, `{"response":{"result":{"invoices":[{"id":1},{"id":2}],"page":1,"pages":3,"per_page":100,"total":240}}}`)
	})
	items, pages, err := client.ListInvoices(context.Background(), 1, 100)
	if err != nil {
		t.Fatalf("ListInvoices: %v", err)
	}
	if pages != 3 {
		t.Fatalf("expected 3 pages, got %d", pages)
	}
	if len(items) != 2 || items[0].ID != 1 || items[1].ID != 2 {
		t.Fatalf("unexpected items %+v", items)
	}
}
