package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/smkpro/smkpro-backend/api/responses"
	productsvc "github.com/smkpro/smkpro-backend/internal/products"
	"github.com/smkpro/smkpro-backend/pkg/logger"
)

// ListProducts returns the available catalog.
func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// GetProduct returns one listing with its variation vocabulary.
func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, err := svc.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}
