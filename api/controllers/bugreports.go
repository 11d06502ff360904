package controllers

import (
	"net/http"

	"github.com/angelmondragon/coffeepos-backend/api/responses"
	"github.com/angelmondragon/coffeepos-backend/api/validators"
	"github.com/angelmondragon/coffeepos-backend/internal/bugreports"
	pkgerrors "github.com/angelmondragon/coffeepos-backend/pkg/errors"
	"github.com/angelmondragon/coffeepos-backend/pkg/logger"
)

type bugReportRequest struct {
	Text string `json:"text" validate:"required"`
}

func BugReportSubmit(svc bugreports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bug report service unavailable"))
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body bugReportRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		receipt, err := svc.Submit(r.Context(), actor.StaffID, actor.Role, body.Text)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, receipt)
	}
}
