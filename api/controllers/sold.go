package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fleetdesk/fleetdesk-backend/api/responses"
	"github.com/fleetdesk/fleetdesk-backend/api/validators"
	salessvc "github.com/fleetdesk/fleetdesk-backend/internal/sales"
	tradeinsvc "github.com/fleetdesk/fleetdesk-backend/internal/tradeins"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
	"github.com/fleetdesk/fleetdesk-backend/pkg/logger"
)

type sellVehicleRequest struct {
	SaleAmount       decimal.Decimal          `json:"saleAmount"`
	SaleDate         string                   `json:"saleDate"`
	PaymentMethod    string                   `json:"paymentMethod"`
	PaymentReference string                   `json:"paymentReference"`
	CustomerName     string                   `json:"customerName,omitempty"`
	CustomerPhone    string                   `json:"customerPhone,omitempty"`
	CustomerEmail    string                   `json:"customerEmail,omitempty"`
	HasTradeIn       bool                     `json:"hasTradeIn"`
	TradeIn          *tradeinsvc.TradeInInput `json:"tradeIn,omitempty"`
}

func (req sellVehicleRequest) toConvertInput() (salessvc.ConvertInput, error) {
	method, err := enums.ParsePaymentMethod(strings.TrimSpace(req.PaymentMethod))
	if err != nil {
		return salessvc.ConvertInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}
	// the trade-in block only counts when the flag says so
	var tradeIn *tradeinsvc.TradeInInput
	if req.HasTradeIn {
		if req.TradeIn == nil {
			return salessvc.ConvertInput{}, pkgerrors.New(pkgerrors.CodeValidation, "tradeIn is required when hasTradeIn is set")
		}
		tradeIn = req.TradeIn
	}
	return salessvc.ConvertInput{
		Sale: salessvc.SaleInput{
			SaleAmount:       req.SaleAmount,
			SaleDate:         strings.TrimSpace(req.SaleDate),
			PaymentMethod:    method,
			PaymentReference: strings.TrimSpace(req.PaymentReference),
			CustomerName:     strings.TrimSpace(req.CustomerName),
			CustomerPhone:    strings.TrimSpace(req.CustomerPhone),
			CustomerEmail:    strings.TrimSpace(req.CustomerEmail),
		},
		TradeIn: tradeIn,
	}, nil
}

// SellVehicle converts an active vehicle into a sold record. The operation
// is all-or-nothing: the vehicle, the sold record, and any trade-in move in
// a single transaction.
func SellVehicle(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		id, err := vehicleIDFromRoute(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload sellVehicleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toConvertInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Convert(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

type soldVehicleListResponse struct {
	SoldVehicles []salessvc.SoldVehicleView `json:"soldVehicles"`
	NextCursor   string                     `json:"nextCursor,omitempty"`
}

func ListSoldVehicles(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), salessvc.ListParams{
			Limit:      page.Limit,
			Cursor:     page.Cursor,
			SearchTerm: validators.SanitizeSearchTerm(r.URL.Query().Get("q")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, soldVehicleListResponse{
			SoldVehicles: salessvc.NewSoldVehicleViews(list.SoldVehicles),
			NextCursor:   list.NextCursor,
		})
	}
}

func GetSoldVehicle(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		id, err := soldVehicleIDFromRoute(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sold, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, salessvc.NewSoldVehicleView(*sold))
	}
}

func UpdateSoldVehicle(svc salessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		id, err := soldVehicleIDFromRoute(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload salessvc.SoldVehicleUpdateInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sold, err := svc.Update(r.Context(), id, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, salessvc.NewSoldVehicleView(*sold))
	}
}

func soldVehicleIDFromRoute(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "soldVehicleID")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sold vehicle id")
	}
	return id, nil
}
