// README: Driver team handlers: CRUD, status, alerts, performance and
// vehicle assignment.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AhmedDevOp360/Transport-Backend/internal/apperr"
	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/driver"
	"github.com/AhmedDevOp360/Transport-Backend/internal/types"
)

type DriverHandler struct {
	drivers *driver.Service
}

func NewDriverHandler(svc *driver.Service) *DriverHandler {
	return &DriverHandler{drivers: svc}
}

func (h *DriverHandler) List(c *gin.Context) {
	result, err := h.drivers.List(c.Request.Context(), driver.ListFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Drivers retrieved successfully", result)
}

type createDriverReq struct {
	UserID                int64    `json:"user_id" binding:"required"`
	TeamName              string   `json:"team_name" binding:"required,max=255"`
	Status                *string  `json:"status"`
	JobAssignment         *string  `json:"job_assignment"`
	TruckNumber           string   `json:"truck_number" binding:"required"`
	Rating                *float64 `json:"rating"`
	LicenseExpiry         *string  `json:"license_expiry"`
	VehicleMaintenanceDue *string  `json:"vehicle_maintenance_due"`
}

func (h *DriverHandler) Create(c *gin.Context) {
	var req createDriverReq
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	cmd := driver.CreateCommand{
		UserID:        types.ID(req.UserID),
		TeamName:      req.TeamName,
		JobAssignment: req.JobAssignment,
		TruckNumber:   req.TruckNumber,
		Rating:        req.Rating,
	}
	if req.Status != nil {
		st := driver.Status(*req.Status)
		cmd.Status = &st
	}
	var ok bool
	if cmd.LicenseExpiry, ok = parseOptionalDate(c, req.LicenseExpiry, "license expiry"); !ok {
		return
	}
	if cmd.VehicleMaintenanceDue, ok = parseOptionalDate(c, req.VehicleMaintenanceDue, "vehicle maintenance due"); !ok {
		return
	}

	d, err := h.drivers.Create(c.Request.Context(), cmd)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Driver created successfully", d)
}

func (h *DriverHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	d, err := h.drivers.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Driver details retrieved successfully", d)
}

type updateDriverReq struct {
	UserID                *int64   `json:"user_id"`
	TeamName              *string  `json:"team_name"`
	Status                *string  `json:"status"`
	JobAssignment         *string  `json:"job_assignment"`
	TruckNumber           *string  `json:"truck_number"`
	Rating                *float64 `json:"rating"`
	LicenseExpiry         *string  `json:"license_expiry"`
	VehicleMaintenanceDue *string  `json:"vehicle_maintenance_due"`
}

func (h *DriverHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req updateDriverReq
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	cmd := driver.UpdateCommand{
		TeamName:      req.TeamName,
		JobAssignment: req.JobAssignment,
		TruckNumber:   req.TruckNumber,
		Rating:        req.Rating,
	}
	if req.UserID != nil {
		uid := types.ID(*req.UserID)
		cmd.UserID = &uid
	}
	if req.Status != nil {
		st := driver.Status(*req.Status)
		cmd.Status = &st
	}
	if cmd.LicenseExpiry, ok = parseOptionalDate(c, req.LicenseExpiry, "license expiry"); !ok {
		return
	}
	if cmd.VehicleMaintenanceDue, ok = parseOptionalDate(c, req.VehicleMaintenanceDue, "vehicle maintenance due"); !ok {
		return
	}

	d, err := h.drivers.Update(c.Request.Context(), id, cmd)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Driver updated successfully", d)
}

func (h *DriverHandler) UpdateStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	d, err := h.drivers.UpdateStatus(c.Request.Context(), id, driver.Status(req.Status))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Driver status updated successfully", d)
}

func (h *DriverHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.drivers.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Driver deleted successfully", nil)
}

func (h *DriverHandler) Alerts(c *gin.Context) {
	result, err := h.drivers.Alerts(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Alerts retrieved successfully", result)
}

func (h *DriverHandler) Performance(c *gin.Context) {
	result, err := h.drivers.Performance(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Driver performance retrieved successfully", result)
}

type assignVehicleReq struct {
	VehicleID int64 `json:"vehicle_id" binding:"required"`
}

func (h *DriverHandler) AssignVehicle(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req assignVehicleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	d, err := h.drivers.AssignVehicle(c.Request.Context(), id, types.ID(req.VehicleID))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Vehicle assigned successfully", d)
}

func (h *DriverHandler) UnassignVehicle(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	d, err := h.drivers.UnassignVehicle(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Vehicle unassigned successfully", d)
}

func parseOptionalDate(c *gin.Context, raw *string, label string) (*types.Date, bool) {
	if raw == nil || *raw == "" {
		return nil, true
	}
	d, err := types.ParseDate(*raw)
	if err != nil {
		fail(c, apperr.Validation("The "+label+" is not a valid date."))
		return nil, false
	}
	return &d, true
}
