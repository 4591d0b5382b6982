package handler

import (
	"net/http"

	"airseat/internal/bookings/service"
	apperrors "airseat/pkg/errors"
	httputil "airseat/pkg/http"
	"airseat/pkg/logger"
	"airseat/pkg/middleware"
	"airseat/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) Pay(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.PaymentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Pay", err)
		return
	}
	if p := middleware.PrincipalFromContext(r.Context()); p != nil {
		req.UserID = p.UserID
	}

	ok, err := h.service.Pay(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Pay", err)
		return
	}
	h.writeResult(w, "Pay", ok)
}

func (h *BookingHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.ConfirmPaymentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "ConfirmPayment", err)
		return
	}
	if p := middleware.PrincipalFromContext(r.Context()); p != nil && !model.IsPrivilegedRole(p.Role) {
		req.UserID = p.UserID
	}

	ok, err := h.service.ConfirmPayment(r.Context(), &req)
	if err != nil {
		h.writeError(w, "ConfirmPayment", err)
		return
	}
	h.writeResult(w, "ConfirmPayment", ok)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.CancelBookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Cancel", err)
		return
	}
	if p := middleware.PrincipalFromContext(r.Context()); p != nil {
		req.UserID = p.UserID
	}

	ok, err := h.service.Cancel(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}
	h.writeResult(w, "Cancel", ok)
}

// ListByUser serves GET /api/v1/bookings?userId=. An authenticated caller
// always gets their own bookings.
func (h *BookingHandler) ListByUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := r.URL.Query().Get("userId")
	if p := middleware.PrincipalFromContext(r.Context()); p != nil {
		userID = p.UserID
	}

	bookings, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		h.writeError(w, "ListByUser", err)
		return
	}
	h.writeSuccess(w, "ListByUser", bookings)
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), ps.ByName("bookingId"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if p := middleware.PrincipalFromContext(r.Context()); p != nil && p.UserID != booking.UserID && !model.IsPrivilegedRole(p.Role) {
		h.writeError(w, "GetByID", apperrors.Forbidden("Booking belongs to another user"))
		return
	}
	h.writeSuccess(w, "GetByID", booking)
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) writeResult(w http.ResponseWriter, handler string, ok bool) {
	if err := httputil.WriteResult(w, ok); err != nil {
		h.log.Error("failed to write result response", "handler", handler, "operation", "WriteResult", "error", err)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/bookings", h.ListByUser)
	router.GET("/api/v1/bookings/:bookingId", h.GetByID)
	router.POST("/api/v1/bookings/pay", h.Pay)
	router.POST("/api/v1/bookings/confirm-payment", h.ConfirmPayment)
	router.POST("/api/v1/bookings/confirmPayment", h.ConfirmPayment)
	router.POST("/api/v1/bookings/cancel", h.Cancel)
	router.POST("/api/v1/bookings/cancelBooking", h.Cancel)
}
