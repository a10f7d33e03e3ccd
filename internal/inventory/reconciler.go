package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/ticketehq/inventory-sync/internal/provider"
	"github.com/ticketehq/inventory-sync/pkg/db/models"
	pkgerrors "github.com/ticketehq/inventory-sync/pkg/errors"
	"github.com/ticketehq/inventory-sync/pkg/logger"
)

// writeStore is the persistence surface the reconciler needs.
type writeStore interface {
	UpsertInventory(ctx context.Context, productID int, date time.Time, lastUpdated time.Time) (int64, error)
	UpsertSlot(ctx context.Context, slot models.Slot) (int64, error)
	ReplaceSlotPax(ctx context.Context, slotID int64, rows []models.PaxAvailability) error
}

// ReconcilerParams groups dependencies for the reconciler.
type ReconcilerParams struct {
	Store  writeStore
	Logger *logger.Logger
	Now    func() time.Time
}

// Reconciler merges freshly fetched provider data into normalized storage.
// Inventory and slot rows are upserted in place; pax rows are replaced
// wholesale per slot, so repeating a reconciliation is a no-op.
type Reconciler struct {
	store writeStore
	logg  *logger.Logger
	now   func() time.Time
}

// NewReconciler builds a reconciler with the required dependencies.
func NewReconciler(params ReconcilerParams) (*Reconciler, error) {
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
	return &Reconciler{store: params.Store, logg: params.Logger, now: now}, nil
}

// Reconcile upserts the fetched slot set for one (product, date) pair.
//
// An empty slot list is a valid "no availability" outcome and leaves any
// previously stored rows untouched; stale slots are never pruned here and
// persist until the next non-empty sync for the same pair. A storage
// failure aborts the remaining slots for this pair; slots already applied
// stay committed.
func (r *Reconciler) Reconcile(ctx context.Context, productID int, date time.Time, slots []provider.SlotData) error {
	logCtx := r.logg.WithProduct(ctx, productID)
	logCtx = r.logg.WithDate(logCtx, date.Format(DateLayout))

	if len(slots) == 0 {
		r.logg.Info(logCtx, "no availability reported, keeping stored rows")
		return nil
	}

	inventoryID, err := r.store.UpsertInventory(ctx, productID, date, r.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersist, err, "upsert inventory")
	}

	for _, slotData := range slots {
		slotID, err := r.store.UpsertSlot(ctx, models.Slot{
			InventoryID:    inventoryID,
			StartTime:      slotData.StartTime,
			EndTime:        slotData.EndTime,
			ProviderSlotID: slotData.ProviderSlotID,
			Remaining:      slotData.Remaining,
			CurrencyCode:   slotData.CurrencyCode,
			VariantID:      slotData.VariantID,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersist, err, fmt.Sprintf("upsert slot %s", slotData.StartTime))
		}

		pax := make([]models.PaxAvailability, 0, len(slotData.PaxAvailability))
		for _, paxData := range slotData.PaxAvailability {
			pax = append(pax, models.PaxAvailability{
				SlotID:        slotID,
				Type:          paxData.Type,
				Name:          paxData.Name,
				Description:   paxData.Description,
				Min:           paxData.Min,
				Max:           paxData.Max,
				Remaining:     paxData.Remaining,
				FinalPrice:    paxData.Price.FinalPrice,
				OriginalPrice: paxData.Price.OriginalPrice,
				CurrencyCode:  paxData.Price.CurrencyCode,
			})
		}
		if err := r.store.ReplaceSlotPax(ctx, slotID, pax); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersist, err, fmt.Sprintf("replace pax for slot %s", slotData.StartTime))
		}
	}

	logCtx = r.logg.WithField(logCtx, "slots", len(slots))
	r.logg.Info(logCtx, "availability reconciled")
	return nil
}
