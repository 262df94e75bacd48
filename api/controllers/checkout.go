package controllers

import (
	"net/http"

	"github.com/smkpro/smkpro-backend/api/responses"
	"github.com/smkpro/smkpro-backend/api/validators"
	ordersvc "github.com/smkpro/smkpro-backend/internal/orders"
	"github.com/smkpro/smkpro-backend/pkg/enums"
	pkgerrors "github.com/smkpro/smkpro-backend/pkg/errors"
	"github.com/smkpro/smkpro-backend/pkg/logger"
)

type placeOrderRequest struct {
	FirstName    string `json:"first_name" validate:"required"`
	LastName     string `json:"last_name" validate:"required"`
	Phone        string `json:"phone" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	AddressLine1 string `json:"address_line_1" validate:"required"`
	AddressLine2 string `json:"address_line_2"`
	Country      string `json:"country" validate:"required"`
	State        string `json:"state" validate:"required"`
	City         string `json:"city" validate:"required"`
	OrderNote    string `json:"order_note"`
}

type confirmPaymentRequest struct {
	OrderNumber   string `json:"order_number" validate:"required"`
	TransactionID string `json:"transaction_id" validate:"required"`
	Method        string `json:"method" validate:"required"`
	Status        string `json:"status" validate:"required"`
}

// PlaceOrder turns the user's cart into a pending order draft.
func PlaceOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload placeOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.PlaceOrder(r.Context(), userID, ordersvc.AddressForm{
			FirstName:    payload.FirstName,
			LastName:     payload.LastName,
			Phone:        payload.Phone,
			Email:        payload.Email,
			AddressLine1: payload.AddressLine1,
			AddressLine2: payload.AddressLine2,
			Country:      payload.Country,
			State:        payload.State,
			City:         payload.City,
			OrderNote:    payload.OrderNote,
			IP:           clientIP(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// ConfirmPayment finalizes an order draft with a payment result.
func ConfirmPayment(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload confirmPaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(payload.Method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}
		status, err := enums.ParsePaymentStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment status"))
			return
		}

		view, err := svc.ConfirmPayment(r.Context(), userID, payload.OrderNumber, payload.TransactionID, method, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
