package controllers

import (
	"net/http"

	"github.com/angelmondragon/coffeepos-backend/api/middleware"
	"github.com/angelmondragon/coffeepos-backend/internal/orders"
	pkgerrors "github.com/angelmondragon/coffeepos-backend/pkg/errors"
)

// actorFromRequest reads the authenticated staff member that the Auth
// middleware stored on the request.
func actorFromRequest(r *http.Request) (orders.Actor, error) {
	staffID := middleware.StaffIDFromContext(r.Context())
	if staffID == "" {
		return orders.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "staff context missing")
	}
	return orders.Actor{StaffID: staffID, Role: middleware.RoleFromContext(r.Context())}, nil
}
