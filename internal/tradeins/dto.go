package tradeins

import (
	"time"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/google/uuid"
)

// TradeInInput captures the writable fields when recording a trade-in.
type TradeInInput struct {
	VIN     string `json:"vin"`
	Year    int    `json:"year"`
	Make    string `json:"make"`
	Model   string `json:"model"`
	Trim    string `json:"trim"`
	Color   string `json:"color"`
	Mileage *int   `json:"mileage,omitempty"`
	Notes   string `json:"notes"`
}

// TradeInUpdateInput captures partial edits to a trade-in record.
type TradeInUpdateInput struct {
	VIN     *string `json:"vin,omitempty"`
	Year    *int    `json:"year,omitempty"`
	Make    *string `json:"make,omitempty"`
	Model   *string `json:"model,omitempty"`
	Trim    *string `json:"trim,omitempty"`
	Color   *string `json:"color,omitempty"`
	Mileage *int    `json:"mileage,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

// ListParams bundle pagination inputs for the trade-in list.
type ListParams struct {
	Limit      int
	Cursor     string
	PickedUp   *bool
	SearchTerm string
}

// TradeInList wraps a page of trade-ins plus the next page cursor.
type TradeInList struct {
	TradeIns   []models.TradeIn `json:"tradeIns"`
	NextCursor string           `json:"nextCursor,omitempty"`
}

// TradeInView is the wire representation of a trade-in.
type TradeInView struct {
	ID           uuid.UUID  `json:"id"`
	VIN          string     `json:"vin,omitempty"`
	Year         int        `json:"year"`
	Make         string     `json:"make"`
	Model        string     `json:"model"`
	Trim         string     `json:"trim,omitempty"`
	Color        string     `json:"color,omitempty"`
	Mileage      *int       `json:"mileage,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	PickedUp     bool       `json:"pickedUp"`
	PickedUpDate *time.Time `json:"pickedUpDate,omitempty"`
	DateAdded    time.Time  `json:"dateAdded"`
}

// NewTradeInView maps a persisted trade-in into its wire representation.
func NewTradeInView(t models.TradeIn) TradeInView {
	return TradeInView{
		ID:           t.ID,
		VIN:          t.VIN,
		Year:         t.Year,
		Make:         t.Make,
		Model:        t.Model,
		Trim:         t.Trim,
		Color:        t.Color,
		Mileage:      t.Mileage,
		Notes:        t.Notes,
		PickedUp:     t.PickedUp,
		PickedUpDate: t.PickedUpDate,
		DateAdded:    t.DateAdded,
	}
}

// NewTradeInViews maps a slice of trade-ins into wire representations.
func NewTradeInViews(tradeIns []models.TradeIn) []TradeInView {
	views := make([]TradeInView, 0, len(tradeIns))
	for _, t := range tradeIns {
		views = append(views, NewTradeInView(t))
	}
	return views
}
