package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db"
	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
	"github.com/fleetdesk/fleetdesk-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service defines document metadata operations.
type Service interface {
	ListByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]models.Document, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Document, error)
	Create(ctx context.Context, input DocumentInput) (*models.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds a document service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("document repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) ListByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]models.Document, error) {
	if vehicleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}
	docs, err := s.repo.ListByVehicle(ctx, vehicleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list documents")
	}
	return docs, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "document id required")
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "document not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load document")
	}
	return doc, nil
}

func (s *service) Create(ctx context.Context, input DocumentInput) (*models.Document, error) {
	if input.VehicleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}
	if strings.TrimSpace(input.FileName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fileName is required")
	}
	if input.FileSize < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fileSize cannot be negative")
	}

	doc := &models.Document{
		VehicleID:  input.VehicleID,
		FileName:   strings.TrimSpace(input.FileName),
		FileSize:   input.FileSize,
		StorageKey: strings.TrimSpace(input.StorageKey),
	}
	created, err := s.repo.Create(ctx, doc)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "document already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create document")
	}

	s.logg.Info(s.logg.WithVehicleID(ctx, input.VehicleID.String()), "document metadata recorded")
	return created, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "document id required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "document not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete document")
	}
	return nil
}
