package controllers

import (
	"net/http"
	"strings"

	"github.com/fleetdesk/fleetdesk-backend/api/responses"
	"github.com/fleetdesk/fleetdesk-backend/api/validators"
	transfersvc "github.com/fleetdesk/fleetdesk-backend/internal/transfer"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
	"github.com/fleetdesk/fleetdesk-backend/pkg/logger"
)

// ExportData serializes the entire store into a single snapshot envelope.
func ExportData(svc transfersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transfer service unavailable"))
			return
		}

		snapshot, err := svc.Export(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, snapshot)
	}
}

type importDataRequest struct {
	Data            transfersvc.Snapshot `json:"data"`
	DuplicateAction string               `json:"duplicateAction"`
}

// ImportData reconciles a previously exported snapshot into the store.
func ImportData(svc transfersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transfer service unavailable"))
			return
		}

		var payload importDataRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		action, err := enums.ParseDuplicateAction(strings.TrimSpace(payload.DuplicateAction))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid duplicate action"))
			return
		}

		result, err := svc.Reconcile(r.Context(), payload.Data, action)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
