// README: Fleet vehicle handlers: CRUD, status, alerts and performance.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/vehicle"
	"github.com/AhmedDevOp360/Transport-Backend/internal/types"
)

type VehicleHandler struct {
	vehicles *vehicle.Service
}

func NewVehicleHandler(svc *vehicle.Service) *VehicleHandler {
	return &VehicleHandler{vehicles: svc}
}

func (h *VehicleHandler) List(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}
	result, err := h.vehicles.List(c.Request.Context(), act, vehicle.ListFilter{
		Type:   c.Query("type"),
		Status: c.Query("status"),
		Search: c.Query("search"),
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Vehicles retrieved successfully", result)
}

type createVehicleReq struct {
	UserID       int64    `json:"user_id" binding:"required"`
	Code         *string  `json:"vehicle_id"`
	Name         *string  `json:"name"`
	Type         string   `json:"type" binding:"required,max=255"`
	Model        string   `json:"model" binding:"required,max=255"`
	Color        *string  `json:"color"`
	Year         *int     `json:"year"`
	LicensePlate string   `json:"license_plate" binding:"required"`
	CapacityTons *float64 `json:"capacity_tons"`
	RatePerKM    *float64 `json:"rate_per_km"`
	HourlyRate   *float64 `json:"hourly_rate"`
	Image        *string  `json:"image"`
	Status       *string  `json:"status"`
	Notes        *string  `json:"notes"`
}

func (h *VehicleHandler) Create(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}
	var req createVehicleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	cmd := vehicle.CreateCommand{
		UserID:       types.ID(req.UserID),
		Code:         req.Code,
		Name:         req.Name,
		Type:         req.Type,
		Model:        req.Model,
		Color:        req.Color,
		Year:         req.Year,
		LicensePlate: req.LicensePlate,
		CapacityTons: req.CapacityTons,
		RatePerKM:    req.RatePerKM,
		HourlyRate:   req.HourlyRate,
		Image:        req.Image,
		Notes:        req.Notes,
	}
	if req.Status != nil {
		st := vehicle.Status(*req.Status)
		cmd.Status = &st
	}

	v, err := h.vehicles.Create(c.Request.Context(), act, cmd)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Vehicle created successfully", v)
}

func (h *VehicleHandler) Get(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	v, err := h.vehicles.Get(c.Request.Context(), act, id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Vehicle details retrieved successfully", v)
}

type updateVehicleReq struct {
	Code         *string  `json:"vehicle_id"`
	Name         *string  `json:"name"`
	Type         *string  `json:"type"`
	Model        *string  `json:"model"`
	Color        *string  `json:"color"`
	Year         *int     `json:"year"`
	LicensePlate *string  `json:"license_plate"`
	CapacityTons *float64 `json:"capacity_tons"`
	RatePerKM    *float64 `json:"rate_per_km"`
	HourlyRate   *float64 `json:"hourly_rate"`
	Image        *string  `json:"image"`
	Status       *string  `json:"status"`
	Notes        *string  `json:"notes"`
}

func (h *VehicleHandler) Update(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req updateVehicleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	cmd := vehicle.UpdateCommand{
		Code:         req.Code,
		Name:         req.Name,
		Type:         req.Type,
		Model:        req.Model,
		Color:        req.Color,
		Year:         req.Year,
		LicensePlate: req.LicensePlate,
		CapacityTons: req.CapacityTons,
		RatePerKM:    req.RatePerKM,
		HourlyRate:   req.HourlyRate,
		Image:        req.Image,
		Notes:        req.Notes,
	}
	if req.Status != nil {
		st := vehicle.Status(*req.Status)
		cmd.Status = &st
	}

	v, err := h.vehicles.Update(c.Request.Context(), act, id, cmd)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Vehicle updated successfully", v)
}

func (h *VehicleHandler) UpdateStatus(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	v, err := h.vehicles.UpdateStatus(c.Request.Context(), act, id, vehicle.Status(req.Status))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Vehicle status updated successfully", v)
}

func (h *VehicleHandler) Delete(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.vehicles.Delete(c.Request.Context(), act, id); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Vehicle deleted successfully", nil)
}

func (h *VehicleHandler) Alerts(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}
	result, err := h.vehicles.Alerts(c.Request.Context(), act)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Vehicle alerts retrieved successfully", result)
}

func (h *VehicleHandler) Performance(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}
	result, err := h.vehicles.Performance(c.Request.Context(), act)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Vehicle performance retrieved successfully", result)
}
