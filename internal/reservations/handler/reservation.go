package handler

import (
	"net/http"

	"airseat/internal/reservations/service"
	httputil "airseat/pkg/http"
	"airseat/pkg/logger"
	"airseat/pkg/middleware"
	"airseat/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ReservationHandler struct {
	service service.ReservationService
	log     *logger.Logger
}

func NewReservationHandler(service service.ReservationService, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		log:     log,
	}
}

func (h *ReservationHandler) Reserve(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.SeatRequest
	if !h.decodeSeatRequest(w, r, "Reserve", &req) {
		return
	}

	booking, err := h.service.Reserve(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Reserve", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Reserve", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) Lock(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.SeatRequest
	if !h.decodeSeatRequest(w, r, "Lock", &req) {
		return
	}

	ok, err := h.service.Lock(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Lock", err)
		return
	}
	h.writeResult(w, "Lock", ok)
}

func (h *ReservationHandler) Unlock(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.SeatRequest
	if !h.decodeSeatRequest(w, r, "Unlock", &req) {
		return
	}

	ok, err := h.service.Unlock(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Unlock", err)
		return
	}
	h.writeResult(w, "Unlock", ok)
}

func (h *ReservationHandler) UnlockAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.UnlockAllRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "UnlockAll", err)
		return
	}
	if p := middleware.PrincipalFromContext(r.Context()); p != nil {
		req.UserID = p.UserID
	}

	if _, err := h.service.UnlockAll(r.Context(), &req); err != nil {
		h.writeError(w, "UnlockAll", err)
		return
	}
	h.writeResult(w, "UnlockAll", true)
}

func (h *ReservationHandler) Unreserve(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.SeatRequest
	if !h.decodeSeatRequest(w, r, "Unreserve", &req) {
		return
	}

	ok, err := h.service.Unreserve(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Unreserve", err)
		return
	}
	h.writeResult(w, "Unreserve", ok)
}

// CancelSeat serves POST /api/v1/reservations/cancel?planeId=&seatId=&userId=
func (h *ReservationHandler) CancelSeat(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	req := model.CancelSeatRequest{
		PlaneID: query.Get("planeId"),
		SeatID:  query.Get("seatId"),
		UserID:  query.Get("userId"),
	}
	if p := middleware.PrincipalFromContext(r.Context()); p != nil {
		req.UserID = p.UserID
	}

	ok, err := h.service.CancelSeat(r.Context(), &req)
	if err != nil {
		h.writeError(w, "CancelSeat", err)
		return
	}
	h.writeResult(w, "CancelSeat", ok)
}

// decodeSeatRequest reads the body and lets an authenticated caller's
// identity take precedence over the userId and userRole it carries.
func (h *ReservationHandler) decodeSeatRequest(w http.ResponseWriter, r *http.Request, handler string, req *model.SeatRequest) bool {
	if err := httputil.DecodeJSON(r, req); err != nil {
		h.writeError(w, handler, err)
		return false
	}

	if p := middleware.PrincipalFromContext(r.Context()); p != nil {
		req.UserID = p.UserID
		req.UserRole = p.Role
	}
	return true
}

func (h *ReservationHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ReservationHandler) writeResult(w http.ResponseWriter, handler string, ok bool) {
	if err := httputil.WriteResult(w, ok); err != nil {
		h.log.Error("failed to write result response", "handler", handler, "operation", "WriteResult", "error", err)
	}
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/reservations/reserve", h.Reserve)
	router.POST("/api/v1/reservations/lock", h.Lock)
	router.POST("/api/v1/reservations/unlock", h.Unlock)
	router.POST("/api/v1/reservations/unlock-all", h.UnlockAll)
	router.POST("/api/v1/reservations/unlockAll", h.UnlockAll)
	router.POST("/api/v1/reservations/cancel", h.CancelSeat)
	router.POST("/api/v1/reservations/unreserve", h.Unreserve)
}
