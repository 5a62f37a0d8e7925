package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk-backend/api/responses"
	"github.com/fleetdesk/fleetdesk-backend/api/validators"
	tradeinsvc "github.com/fleetdesk/fleetdesk-backend/internal/tradeins"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
	"github.com/fleetdesk/fleetdesk-backend/pkg/logger"
)

type tradeInListResponse struct {
	TradeIns   []tradeinsvc.TradeInView `json:"tradeIns"`
	NextCursor string                   `json:"nextCursor,omitempty"`
}

func ListTradeIns(svc tradeinsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "trade-in service unavailable"))
			return
		}

		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := tradeinsvc.ListParams{
			Limit:      page.Limit,
			Cursor:     page.Cursor,
			SearchTerm: validators.SanitizeSearchTerm(r.URL.Query().Get("q")),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("pickedUp")); raw != "" {
			pickedUp, parseErr := strconv.ParseBool(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid pickedUp filter"))
				return
			}
			params.PickedUp = &pickedUp
		}

		list, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, tradeInListResponse{
			TradeIns:   tradeinsvc.NewTradeInViews(list.TradeIns),
			NextCursor: list.NextCursor,
		})
	}
}

func CreateTradeIn(svc tradeinsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "trade-in service unavailable"))
			return
		}

		var payload tradeinsvc.TradeInInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tradeIn, err := svc.Create(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, tradeinsvc.NewTradeInView(*tradeIn))
	}
}

func GetTradeIn(svc tradeinsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "trade-in service unavailable"))
			return
		}

		id, err := tradeInIDFromRoute(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tradeIn, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, tradeinsvc.NewTradeInView(*tradeIn))
	}
}

func UpdateTradeIn(svc tradeinsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "trade-in service unavailable"))
			return
		}

		id, err := tradeInIDFromRoute(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload tradeinsvc.TradeInUpdateInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tradeIn, err := svc.Update(r.Context(), id, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, tradeinsvc.NewTradeInView(*tradeIn))
	}
}

func DeleteTradeIn(svc tradeinsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "trade-in service unavailable"))
			return
		}

		id, err := tradeInIDFromRoute(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type tradeInPickupRequest struct {
	PickedUp bool `json:"pickedUp"`
}

// SetTradeInPickup toggles the picked-up flag. Setting it stamps the pickup
// date; clearing it clears the date as well.
func SetTradeInPickup(svc tradeinsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "trade-in service unavailable"))
			return
		}

		id, err := tradeInIDFromRoute(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload tradeInPickupRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tradeIn, err := svc.SetPickedUp(r.Context(), id, payload.PickedUp)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, tradeinsvc.NewTradeInView(*tradeIn))
	}
}

func tradeInIDFromRoute(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "tradeInID")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid trade-in id")
	}
	return id, nil
}
