package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk-backend/api/responses"
	"github.com/fleetdesk/fleetdesk-backend/api/validators"
	documentsvc "github.com/fleetdesk/fleetdesk-backend/internal/documents"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
	"github.com/fleetdesk/fleetdesk-backend/pkg/logger"
)

// ListVehicleDocuments returns the document metadata attached to a vehicle.
func ListVehicleDocuments(svc documentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "document service unavailable"))
			return
		}

		vehicleID, err := vehicleIDFromRoute(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		docs, err := svc.ListByVehicle(r.Context(), vehicleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"documents": documentsvc.NewDocumentViews(docs)})
	}
}

type attachDocumentRequest struct {
	FileName   string `json:"fileName" validate:"required"`
	FileSize   int64  `json:"fileSize" validate:"omitempty,min=0"`
	StorageKey string `json:"storageKey"`
}

// AttachDocument records file metadata against a vehicle. The binary lives
// in external storage; only its locator is stored here.
func AttachDocument(svc documentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "document service unavailable"))
			return
		}

		vehicleID, err := vehicleIDFromRoute(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload attachDocumentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		doc, err := svc.Create(r.Context(), documentsvc.DocumentInput{
			VehicleID:  vehicleID,
			FileName:   payload.FileName,
			FileSize:   payload.FileSize,
			StorageKey: payload.StorageKey,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, documentsvc.NewDocumentView(*doc))
	}
}

func GetDocument(svc documentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "document service unavailable"))
			return
		}

		id, err := documentIDFromRoute(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		doc, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, documentsvc.NewDocumentView(*doc))
	}
}

func DeleteDocument(svc documentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "document service unavailable"))
			return
		}

		id, err := documentIDFromRoute(r)
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

func documentIDFromRoute(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "documentID")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid document id")
	}
	return id, nil
}
