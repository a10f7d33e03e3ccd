package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/ticketehq/inventory-sync/api/controllers"
	"github.com/ticketehq/inventory-sync/internal/inventory"
	"github.com/ticketehq/inventory-sync/pkg/config"
	"github.com/ticketehq/inventory-sync/pkg/db/models"
	"github.com/ticketehq/inventory-sync/pkg/logger"
)

type emptyStore struct{}

func (emptyStore) FindInventory(context.Context, int, time.Time) (models.Inventory, error) {
	return models.Inventory{}, gorm.ErrRecordNotFound
}

func (emptyStore) ListInventoriesBetween(context.Context, int, time.Time, time.Time) ([]models.Inventory, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "routes-test", Output: io.Discard})
	query, err := inventory.NewQuery(inventory.QueryParams{Store: emptyStore{}, Logger: logg})
	if err != nil {
		t.Fatalf("NewQuery: %v", err)
	}
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	return NewRouter(cfg, logg, query, map[string]controllers.Pinger{})
}

func TestRouterWiresHealthAndExperienceRoutes(t *testing.T) {
	router := newTestRouter(t)

	cases := []struct {
		path string
		want int
	}{
		{"/health/live", http.StatusOK},
		{"/health/ready", http.StatusOK},
		{"/api/v1/experience/15/dates", http.StatusOK},
		{"/api/v1/experience/15/slots?date=2026-03-10", http.StatusNotFound},
		{"/api/v1/experience/abc/slots?date=2026-03-10", http.StatusBadRequest},
		{"/api/v1/experience/15/unknown", http.StatusNotFound},
	}
	for _, tc := range cases {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, tc.path, nil))
		if resp.Code != tc.want {
			t.Fatalf("%s: expected %d got %d (%s)", tc.path, tc.want, resp.Code, resp.Body.String())
		}
	}
}
