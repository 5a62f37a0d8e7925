package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk-backend/internal/inventory"
	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
	"github.com/fleetdesk/fleetdesk-backend/pkg/types"
)

type stubInventoryService struct {
	listFn         func(ctx context.Context, params inventory.ListParams) (*inventory.VehicleList, error)
	changeStatusFn func(ctx context.Context, id uuid.UUID, input inventory.StatusChangeInput) (*models.Vehicle, error)
}

func (s *stubInventoryService) List(ctx context.Context, params inventory.ListParams) (*inventory.VehicleList, error) {
	if s.listFn != nil {
		return s.listFn(ctx, params)
	}
	return &inventory.VehicleList{}, nil
}

func (s *stubInventoryService) Get(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	return &models.Vehicle{ID: id, Status: enums.VehicleStatusInStock}, nil
}

func (s *stubInventoryService) Create(ctx context.Context, input inventory.VehicleInput) (*models.Vehicle, error) {
	return &models.Vehicle{ID: uuid.New(), Status: input.Status, Make: input.Make, Model: input.Model}, nil
}

func (s *stubInventoryService) Update(ctx context.Context, id uuid.UUID, input inventory.VehicleUpdateInput) (*models.Vehicle, error) {
	return &models.Vehicle{ID: id}, nil
}

func (s *stubInventoryService) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (s *stubInventoryService) ChangeStatus(ctx context.Context, id uuid.UUID, input inventory.StatusChangeInput) (*models.Vehicle, error) {
	if s.changeStatusFn != nil {
		return s.changeStatusFn(ctx, id, input)
	}
	return &models.Vehicle{ID: id, Status: input.Status}, nil
}

func newVehicleTestRouter(svc inventory.Service) http.Handler {
	r := chi.NewRouter()
	r.Get("/vehicles", ListVehicles(svc, nil))
	r.Post("/vehicles", CreateVehicle(svc, nil))
	r.Post("/vehicles/{vehicleID}/status", ChangeVehicleStatus(svc, nil))
	return r
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) types.APIError {
	t.Helper()
	var body types.ErrorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return body.Error
}

func TestListVehiclesParsesStatusFilter(t *testing.T) {
	var captured inventory.ListParams
	svc := &stubInventoryService{
		listFn: func(ctx context.Context, params inventory.ListParams) (*inventory.VehicleList, error) {
			captured = params
			return &inventory.VehicleList{}, nil
		},
	}
	router := newVehicleTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/vehicles?status=in-transit&q=civic&limit=10", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.Filters.Status == nil || *captured.Filters.Status != enums.VehicleStatusInTransit {
		t.Fatalf("expected in-transit filter got %v", captured.Filters.Status)
	}
	if captured.Filters.Query != "civic" {
		t.Fatalf("expected search term civic got %q", captured.Filters.Query)
	}
	if captured.Limit != 10 {
		t.Fatalf("expected limit 10 got %d", captured.Limit)
	}
}

func TestListVehiclesRejectsUnknownStatus(t *testing.T) {
	router := newVehicleTestRouter(&stubInventoryService{})

	req := httptest.NewRequest(http.MethodGet, "/vehicles?status=detailing", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if apiErr := decodeError(t, resp); apiErr.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("expected validation code got %s", apiErr.Code)
	}
}

func TestCreateVehicleRejectsUnknownFields(t *testing.T) {
	router := newVehicleTestRouter(&stubInventoryService{})

	req := httptest.NewRequest(http.MethodPost, "/vehicles", strings.NewReader(`{"make":"Honda","model":"Civic","bogus":true}`))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field got %d", resp.Code)
	}
}

func TestChangeVehicleStatusRejectsMalformedID(t *testing.T) {
	router := newVehicleTestRouter(&stubInventoryService{})

	req := httptest.NewRequest(http.MethodPost, "/vehicles/not-a-uuid/status", strings.NewReader(`{"status":"in-stock"}`))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestChangeVehicleStatusMapsStateConflict(t *testing.T) {
	svc := &stubInventoryService{
		changeStatusFn: func(ctx context.Context, id uuid.UUID, input inventory.StatusChangeInput) (*models.Vehicle, error) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "vehicles are sold through the sale conversion flow, not a status change")
		},
	}
	router := newVehicleTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/vehicles/"+uuid.NewString()+"/status", strings.NewReader(`{"status":"sold"}`))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
	if apiErr := decodeError(t, resp); apiErr.Code != string(pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict code got %s", apiErr.Code)
	}
}

func TestChangeVehicleStatusPassesPickupFields(t *testing.T) {
	var captured inventory.StatusChangeInput
	svc := &stubInventoryService{
		changeStatusFn: func(ctx context.Context, id uuid.UUID, input inventory.StatusChangeInput) (*models.Vehicle, error) {
			captured = input
			return &models.Vehicle{ID: id, Status: input.Status}, nil
		},
	}
	router := newVehicleTestRouter(svc)

	body := `{"status":"pickup-scheduled","pickupDate":"2024-03-01","pickupTime":"10:30"}`
	req := httptest.NewRequest(http.MethodPost, "/vehicles/"+uuid.NewString()+"/status", strings.NewReader(body))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.Status != enums.VehicleStatusPickupScheduled {
		t.Fatalf("expected pickup-scheduled got %s", captured.Status)
	}
	if captured.PickupDate != "2024-03-01" || captured.PickupTime != "10:30" {
		t.Fatalf("pickup fields not forwarded: %+v", captured)
	}
}
