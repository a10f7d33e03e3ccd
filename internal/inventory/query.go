package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ticketehq/inventory-sync/pkg/db/models"
	pkgerrors "github.com/ticketehq/inventory-sync/pkg/errors"
	"github.com/ticketehq/inventory-sync/pkg/logger"
)

// availableWindowMonths bounds the dates view to [today, today+2 months].
const availableWindowMonths = 2

// readStore is the persistence surface the query service needs.
type readStore interface {
	FindInventory(ctx context.Context, productID int, date time.Time) (models.Inventory, error)
	ListInventoriesBetween(ctx context.Context, productID int, from, to time.Time) ([]models.Inventory, error)
}

// QueryParams groups dependencies for the query service.
type QueryParams struct {
	Store  readStore
	Logger *logger.Logger
	Now    func() time.Time
}

// Query serves the read-side aggregation views over normalized storage.
type Query struct {
	store readStore
	logg  *logger.Logger
	now   func() time.Time
}

// NewQuery builds the read-side query service.
func NewQuery(params QueryParams) (*Query, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("store required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Query{store: params.Store, logg: params.Logger, now: now}, nil
}

// GetSlots returns the slot views for one product and date. Each slot
// carries the minimum-final-price pax entry as its representative price
// (ties resolve to the first row in stored order).
func (q *Query) GetSlots(ctx context.Context, productID int, date time.Time) ([]SlotDTO, error) {
	logCtx := q.logg.WithProduct(ctx, productID)
	logCtx = q.logg.WithDate(logCtx, date.Format(DateLayout))
	q.logg.Info(logCtx, "listing slots")

	inv, err := q.store.FindInventory(ctx, productID, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound,
				fmt.Sprintf("no slots found for experience %d on date %s", productID, date.Format(DateLayout)))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory")
	}
	if len(inv.Slots) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound,
			fmt.Sprintf("no slots found for experience %d on date %s", productID, date.Format(DateLayout)))
	}

	views := make([]SlotDTO, 0, len(inv.Slots))
	for _, slot := range inv.Slots {
		lowest := minPax(slot.PaxAvailabilities)

		pax := make([]PaxDTO, 0, len(slot.PaxAvailabilities))
		for _, p := range slot.PaxAvailabilities {
			pax = append(pax, PaxDTO{
				Type:        p.Type,
				Name:        p.Name,
				Description: p.Description,
				Price: PriceDTO{
					FinalPrice:    p.FinalPrice,
					OriginalPrice: p.OriginalPrice,
					CurrencyCode:  p.CurrencyCode,
				},
				Min:       p.Min,
				Max:       p.Max,
				Remaining: p.Remaining,
			})
		}

		views = append(views, SlotDTO{
			StartTime:       slot.StartTime,
			StartDate:       inv.Date.Format(DateLayout),
			Price:           lowest,
			Remaining:       slot.Remaining,
			PaxAvailability: pax,
		})
	}
	return views, nil
}

// GetAvailableDates returns every date in the next two months that has an
// inventory row, each with the lowest final price found across all pax
// rows of all its slots. Dates with no price rows carry a zero price in
// the default currency rather than being omitted.
func (q *Query) GetAvailableDates(ctx context.Context, productID int) (DatesDTO, error) {
	logCtx := q.logg.WithProduct(ctx, productID)
	q.logg.Info(logCtx, "listing available dates")

	today := q.now().UTC().Truncate(24 * time.Hour)
	until := today.AddDate(0, availableWindowMonths, 0)

	invs, err := q.store.ListInventoriesBetween(ctx, productID, today, until)
	if err != nil {
		return DatesDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inventories")
	}

	dates := make([]DateDTO, 0, len(invs))
	for _, inv := range invs {
		lowest, found := minAcrossSlots(inv.Slots)
		if !found {
			lowest = PriceDTO{
				FinalPrice:    decimal.Zero,
				OriginalPrice: decimal.Zero,
				CurrencyCode:  DefaultCurrency,
			}
		}
		dates = append(dates, DateDTO{
			Date:  inv.Date.Format(DateLayout),
			Price: lowest,
		})
	}
	return DatesDTO{Dates: dates}, nil
}

// minPax picks the pax row with the lowest final price, first-wins on ties.
func minPax(rows []models.PaxAvailability) PriceDTO {
	if len(rows) == 0 {
		return PriceDTO{CurrencyCode: DefaultCurrency}
	}
	lowest := rows[0]
	for _, p := range rows[1:] {
		if p.FinalPrice.LessThan(lowest.FinalPrice) {
			lowest = p
		}
	}
	return PriceDTO{
		FinalPrice:    lowest.FinalPrice,
		OriginalPrice: lowest.OriginalPrice,
		CurrencyCode:  lowest.CurrencyCode,
	}
}

func minAcrossSlots(slots []models.Slot) (PriceDTO, bool) {
	var lowest PriceDTO
	found := false
	for _, slot := range slots {
		for _, p := range slot.PaxAvailabilities {
			if !found || p.FinalPrice.LessThan(lowest.FinalPrice) {
				lowest = PriceDTO{
					FinalPrice:    p.FinalPrice,
					OriginalPrice: p.OriginalPrice,
					CurrencyCode:  p.CurrencyCode,
				}
				found = true
			}
		}
	}
	return lowest, found
}
