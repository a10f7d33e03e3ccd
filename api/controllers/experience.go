package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ticketehq/inventory-sync/api/responses"
	"github.com/ticketehq/inventory-sync/internal/inventory"
	pkgerrors "github.com/ticketehq/inventory-sync/pkg/errors"
	"github.com/ticketehq/inventory-sync/pkg/logger"
)

// ExperienceSlots serves the slot views for one experience and date.
func ExperienceSlots(svc *inventory.Query, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		productID, err := experienceID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		raw := strings.TrimSpace(r.URL.Query().Get("date"))
		if raw == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "date query parameter is required"))
			return
		}
		date, err := time.Parse(inventory.DateLayout, raw)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "date must be formatted YYYY-MM-DD"))
			return
		}

		slots, err := svc.GetSlots(ctx, productID, date)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		// The slot view is a bare top-level array, not enveloped.
		responses.WriteRaw(w, http.StatusOK, slots)
	}
}

// ExperienceDates serves the bookable dates over the next two months.
func ExperienceDates(svc *inventory.Query, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		productID, err := experienceID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dates, err := svc.GetAvailableDates(ctx, productID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		// Top-level {"dates":[...]} with no envelope.
		responses.WriteRaw(w, http.StatusOK, dates)
	}
}

func experienceID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "experience id must be a positive integer")
	}
	return id, nil
}
