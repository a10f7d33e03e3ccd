package provider

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ticketehq/inventory-sync/pkg/config"
	pkgerrors "github.com/ticketehq/inventory-sync/pkg/errors"
	"github.com/ticketehq/inventory-sync/pkg/logger"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	client, err := NewClient(config.ProviderConfig{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Timeout: 2 * time.Second,
	}, logg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestFetchAvailabilityDecodesSlots(t *testing.T) {
	var gotPath, gotKey, gotDate string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		gotDate = r.URL.Query().Get("date")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{
				"startTime": "10:00",
				"endTime": "11:00",
				"providerSlotId": "slot-1",
				"remaining": 7,
				"currencyCode": "SGD",
				"variantId": 3,
				"paxAvailability": [
					{"type": "ADULT", "name": "Adult", "description": "", "min": 1, "max": 6, "remaining": 7,
					 "price": {"finalPrice": 12.50, "originalPrice": 15.00, "currencyCode": "SGD"}}
				]
			}
		]`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	date := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

	slots, err := client.FetchAvailability(context.Background(), 14, date)
	if err != nil {
		t.Fatalf("unexpected fetch error: %v", err)
	}
	if gotPath != "/14" {
		t.Fatalf("expected path /14, got %s", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("expected api key header, got %q", gotKey)
	}
	if gotDate != "2026-03-02" {
		t.Fatalf("expected date param 2026-03-02, got %q", gotDate)
	}
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	if slots[0].StartTime != "10:00" || slots[0].Remaining != 7 {
		t.Fatalf("unexpected slot: %+v", slots[0])
	}
	if got := slots[0].PaxAvailability[0].Price.FinalPrice.StringFixed(2); got != "12.50" {
		t.Fatalf("expected final price 12.50, got %s", got)
	}
}

func TestFetchAvailabilityEmptyArrayIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	slots, err := client.FetchAvailability(context.Background(), 15, time.Now())
	if err != nil {
		t.Fatalf("empty availability must not error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots, got %d", len(slots))
	}
}

func TestFetchAvailabilityNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.FetchAvailability(context.Background(), 14, time.Now())
	if err == nil {
		t.Fatal("expected error on non-2xx status")
	}
	if !pkgerrors.Is(err, pkgerrors.CodeFetch) {
		t.Fatalf("expected fetch error code, got %v", err)
	}
}

func TestFetchAvailabilityMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.FetchAvailability(context.Background(), 14, time.Now())
	if err == nil {
		t.Fatal("expected error on malformed payload")
	}
	if !pkgerrors.Is(err, pkgerrors.CodeFetch) {
		t.Fatalf("expected fetch error code, got %v", err)
	}
}

func TestFetchAvailabilityRejectsInvalidSlot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"startTime": "", "currencyCode": "SGD"}]`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.FetchAvailability(context.Background(), 14, time.Now())
	if err == nil {
		t.Fatal("expected error for slot missing startTime")
	}
}

func TestNewClientRequiresCredential(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	if _, err := NewClient(config.ProviderConfig{BaseURL: "http://x"}, logg); err == nil {
		t.Fatal("expected missing api key to fail")
	}
}
