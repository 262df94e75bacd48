package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/smkpro/smkpro-backend/api/middleware"
	"github.com/smkpro/smkpro-backend/api/responses"
	"github.com/smkpro/smkpro-backend/api/validators"
	cartsvc "github.com/smkpro/smkpro-backend/internal/cart"
	"github.com/smkpro/smkpro-backend/internal/identity"
	"github.com/smkpro/smkpro-backend/internal/variations"
	pkgerrors "github.com/smkpro/smkpro-backend/pkg/errors"
	"github.com/smkpro/smkpro-backend/pkg/logger"
)

type addCartItemRequest struct {
	ProductID  uuid.UUID            `json:"product_id" validate:"required"`
	Variations []variationSelection `json:"variations" validate:"dive"`
}

type variationSelection struct {
	Category string `json:"category" validate:"required"`
	Value    string `json:"value" validate:"required"`
}

func (r addCartItemRequest) selection() variations.Selection {
	sel := make(variations.Selection, 0, len(r.Variations))
	for _, v := range r.Variations {
		sel = append(sel, variations.Entry{Category: v.Category, Value: v.Value})
	}
	return sel
}

// GetCart returns the caller's cart with totals.
func GetCart(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := requestIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		contents, err := svc.ListItems(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, contents)
	}
}

// AddCartItem adds one unit of a product configuration to the cart.
func AddCartItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := requestIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		line, err := svc.AddItem(r.Context(), owner, payload.ProductID, payload.selection())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, line)
	}
}

// IncrementCartItem bumps a line's quantity by one.
func IncrementCartItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, lineID, err := requestCartLine(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		line, err := svc.IncrementItem(r.Context(), owner, lineID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, line)
	}
}

// DecrementCartItem drops a line's quantity by one, removing it at zero.
func DecrementCartItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, lineID, err := requestCartLine(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		line, err := svc.DecrementOrRemove(r.Context(), owner, lineID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if line == nil {
			responses.WriteSuccess(w, map[string]string{"status": "removed"})
			return
		}
		responses.WriteSuccess(w, line)
	}
}

// RemoveCartItem deletes a line outright.
func RemoveCartItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, lineID, err := requestCartLine(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.RemoveItem(r.Context(), owner, lineID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

func requestIdentity(r *http.Request) (identity.Identity, error) {
	owner, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return identity.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "no session or user identity")
	}
	return owner, nil
}

func requestCartLine(r *http.Request) (identity.Identity, uuid.UUID, error) {
	owner, err := requestIdentity(r)
	if err != nil {
		return identity.Identity{}, uuid.Nil, err
	}
	lineID, err := uuid.Parse(chi.URLParam(r, "lineID"))
	if err != nil {
		return identity.Identity{}, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cart line id")
	}
	return owner, lineID, nil
}
