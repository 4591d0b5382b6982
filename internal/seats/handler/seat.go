package handler

import (
	"net/http"

	"airseat/internal/seats/service"
	httputil "airseat/pkg/http"
	"airseat/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type SeatHandler struct {
	service service.SeatService
	log     *logger.Logger
}

func NewSeatHandler(service service.SeatService, log *logger.Logger) *SeatHandler {
	return &SeatHandler{
		service: service,
		log:     log,
	}
}

func (h *SeatHandler) ListPlanes(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	planes, err := h.service.ListPlanes(r.Context())
	if err != nil {
		h.writeError(w, "ListPlanes", err)
		return
	}
	h.writeSuccess(w, "ListPlanes", planes)
}

func (h *SeatHandler) GetPlane(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	plane, err := h.service.GetPlane(r.Context(), ps.ByName("planeId"))
	if err != nil {
		h.writeError(w, "GetPlane", err)
		return
	}
	h.writeSuccess(w, "GetPlane", plane)
}

func (h *SeatHandler) GetAllSeats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	seats, err := h.service.GetAllSeats(r.Context())
	if err != nil {
		h.writeError(w, "GetAllSeats", err)
		return
	}
	h.writeSuccess(w, "GetAllSeats", seats)
}

// GetSeatsForFlight serves GET /api/v1/seats/plane/:planeId?travelDate=&travelTime=
func (h *SeatHandler) GetSeatsForFlight(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	query, err := httputil.RequiredQuery(r, "travelDate", "travelTime")
	if err != nil {
		h.writeError(w, "GetSeatsForFlight", err)
		return
	}

	seats, err := h.service.GetSeatsForFlight(r.Context(), ps.ByName("planeId"), query["travelDate"], query["travelTime"])
	if err != nil {
		h.writeError(w, "GetSeatsForFlight", err)
		return
	}
	h.writeSuccess(w, "GetSeatsForFlight", seats)
}

func (h *SeatHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *SeatHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *SeatHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/planes", h.ListPlanes)
	router.GET("/api/v1/planes/:planeId", h.GetPlane)
	router.GET("/api/v1/seats", h.GetAllSeats)
	router.GET("/api/v1/seats/plane/:planeId", h.GetSeatsForFlight)
}
