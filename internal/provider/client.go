package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ticketehq/inventory-sync/pkg/config"
	pkgerrors "github.com/ticketehq/inventory-sync/pkg/errors"
	"github.com/ticketehq/inventory-sync/pkg/logger"
)

const (
	apiKeyHeader = "x-api-key"
	dateLayout   = "2006-01-02"
)

var (
	errAPIKeyRequired  = errors.New("provider api key is required")
	errBaseURLRequired = errors.New("provider base url is required")
	errLoggerRequired  = errors.New("provider logger is required")
)

// Client fetches raw availability from the upstream inventory API with
// centralized auth, logging, and error mapping.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient initializes the provider client and validates the credentials.
func NewClient(cfg config.ProviderConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logg,
	}, nil
}

// FetchAvailability returns the slot list for one product on one calendar
// date. An empty list is a valid "no availability" outcome; transport
// failures, non-2xx responses, and malformed payloads surface as typed
// fetch errors.
func (c *Client) FetchAvailability(ctx context.Context, productID int, date time.Time) ([]SlotData, error) {
	url := fmt.Sprintf("%s/%d?date=%s", c.baseURL, productID, date.Format(dateLayout))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeFetch, err, "build availability request")
	}
	req.Header.Set(apiKeyHeader, c.apiKey)

	logCtx := c.logger.WithProduct(ctx, productID)
	logCtx = c.logger.WithDate(logCtx, date.Format(dateLayout))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error(logCtx, "availability request failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeFetch, err, "call availability api")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("availability api returned %s", resp.Status)
		c.logger.Error(logCtx, "availability request rejected", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeFetch, err, "availability api status")
	}

	var slots []SlotData
	if err := json.NewDecoder(resp.Body).Decode(&slots); err != nil {
		c.logger.Error(logCtx, "availability payload undecodable", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeFetch, err, "decode availability payload")
	}

	if err := validateSlots(slots); err != nil {
		c.logger.Error(logCtx, "availability payload invalid", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeFetch, err, "validate availability payload")
	}

	logCtx = c.logger.WithField(logCtx, "slots", len(slots))
	c.logger.Info(logCtx, "availability fetched")
	return slots, nil
}

func validateSlots(slots []SlotData) error {
	for i, slot := range slots {
		if strings.TrimSpace(slot.StartTime) == "" {
			return fmt.Errorf("slot %d: missing startTime", i)
		}
		if strings.TrimSpace(slot.CurrencyCode) == "" {
			return fmt.Errorf("slot %d: missing currencyCode", i)
		}
		for j, pax := range slot.PaxAvailability {
			if strings.TrimSpace(pax.Type) == "" {
				return fmt.Errorf("slot %d pax %d: missing type", i, j)
			}
		}
	}
	return nil
}
