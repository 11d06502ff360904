package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/coffeepos-backend/api/responses"
	"github.com/angelmondragon/coffeepos-backend/api/validators"
	"github.com/angelmondragon/coffeepos-backend/internal/assembly"
	pkgerrors "github.com/angelmondragon/coffeepos-backend/pkg/errors"
	"github.com/angelmondragon/coffeepos-backend/pkg/logger"
)

func assemblyUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assembly service unavailable"))
}

type startAssemblyRequest struct {
	OrderID *uuid.UUID `json:"order_id,omitempty"`
}

// addLineRequest adds either a catalog price option (price_id) or a free-form
// line carrying its own name and price.
type addLineRequest struct {
	PriceID  *uuid.UUID       `json:"price_id,omitempty"`
	Name     string           `json:"name,omitempty"`
	Category string           `json:"category,omitempty"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	Quantity int              `json:"quantity" validate:"gte=1,lte=99"`
	Details  *string          `json:"details,omitempty"`
}

func AssemblyView(svc assembly.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			assemblyUnavailable(w, r, logg)
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		session, err := svc.View(r.Context(), actor.StaffID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}

// AssemblyStart opens a session for a new order, or for appending to an open
// order when order_id is given. Any session in progress is replaced.
func AssemblyStart(svc assembly.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			assemblyUnavailable(w, r, logg)
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body startAssemblyRequest
		if err := validators.DecodeOptionalJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		session, err := svc.Start(r.Context(), actor.StaffID, assembly.StartInput{OrderID: body.OrderID})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, session)
	}
}

func AssemblyAddLine(svc assembly.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			assemblyUnavailable(w, r, logg)
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body addLineRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		details := validators.SanitizeOptional(body.Details, 0)

		var session *assembly.Session
		switch {
		case body.PriceID != nil:
			session, err = svc.AddCatalogLine(r.Context(), actor.StaffID, *body.PriceID, body.Quantity, details)
		case body.Price != nil:
			session, err = svc.AddLine(r.Context(), actor.StaffID, assembly.Line{
				Name:     body.Name,
				Category: body.Category,
				Price:    *body.Price,
				Quantity: body.Quantity,
				Details:  details,
			})
		default:
			err = pkgerrors.New(pkgerrors.CodeValidation, "either price_id or name and price are required")
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}

func AssemblyRemoveLine(svc assembly.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			assemblyUnavailable(w, r, logg)
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		index, err := validators.IntParam(r, "index")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		session, err := svc.RemoveLine(r.Context(), actor.StaffID, index)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}

func AssemblyCancel(svc assembly.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			assemblyUnavailable(w, r, logg)
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Cancel(r.Context(), actor.StaffID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// AssemblyCommit writes the session to the order store and returns the daily
// number the order is called by.
func AssemblyCommit(svc assembly.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			assemblyUnavailable(w, r, logg)
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Commit(r.Context(), actor.StaffID, actor.Role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status := http.StatusCreated
		if result.Target == assembly.TargetExistingOrder {
			status = http.StatusOK
		}
		responses.WriteSuccessStatus(w, status, result)
	}
}
