// README: Move request handlers: create, browse, status update and driver
// assignment.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AhmedDevOp360/Transport-Backend/internal/apperr"
	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/fulfillment"
	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/moverequest"
	"github.com/AhmedDevOp360/Transport-Backend/internal/types"
)

type MoveRequestHandler struct {
	requests    *moverequest.Service
	fulfillment *fulfillment.Service
}

func NewMoveRequestHandler(requests *moverequest.Service, ff *fulfillment.Service) *MoveRequestHandler {
	return &MoveRequestHandler{requests: requests, fulfillment: ff}
}

type createMoveRequestReq struct {
	MoveType              string                  `json:"move_type" binding:"required,max=255"`
	VehicleType           string                  `json:"vehicle_type" binding:"required,max=255"`
	MoveTitle             string                  `json:"move_title" binding:"required,max=255"`
	PickupAddress         string                  `json:"pickup_address" binding:"required"`
	DropAddress           string                  `json:"drop_address" binding:"required"`
	MoveDate              string                  `json:"move_date" binding:"required"`
	MoveTime              string                  `json:"move_time" binding:"required"`
	PropertySize          string                  `json:"property_size" binding:"required,max=255"`
	BudgetMin             float64                 `json:"budget_min" binding:"min=0"`
	BudgetMax             float64                 `json:"budget_max" binding:"min=0"`
	EstimatedDeliveryDate *string                 `json:"estimated_delivery_date"`
	Description           *string                 `json:"description"`
	Items                 []moverequest.ItemInput `json:"items" binding:"required,min=1,dive"`
}

func (h *MoveRequestHandler) Create(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}

	var req createMoveRequestReq
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	moveDate, err := types.ParseDate(req.MoveDate)
	if err != nil {
		fail(c, apperr.Validation("The move date does not match the format Y-m-d."))
		return
	}
	cmd := moverequest.CreateCommand{
		MoveType:      req.MoveType,
		VehicleType:   req.VehicleType,
		MoveTitle:     req.MoveTitle,
		PickupAddress: req.PickupAddress,
		DropAddress:   req.DropAddress,
		MoveDate:      moveDate,
		MoveTime:      types.TimeOfDay(req.MoveTime),
		PropertySize:  req.PropertySize,
		BudgetMin:     req.BudgetMin,
		BudgetMax:     req.BudgetMax,
		Description:   req.Description,
		Items:         req.Items,
	}
	if req.EstimatedDeliveryDate != nil {
		d, err := types.ParseDate(*req.EstimatedDeliveryDate)
		if err != nil {
			fail(c, apperr.Validation("The estimated delivery date does not match the format Y-m-d."))
			return
		}
		cmd.EstimatedDeliveryDate = &d
	}

	mr, err := h.requests.Create(c.Request.Context(), act, cmd)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Move request created successfully", mr)
}

func (h *MoveRequestHandler) Browse(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}

	f := moverequest.BrowseFilter{
		Search:      c.Query("search"),
		Location:    c.Query("location"),
		VehicleType: c.Query("vehicle_type"),
	}
	if v, ok := queryFloat(c, "budget_min"); ok {
		f.BudgetMin = &v
	}
	if v, ok := queryFloat(c, "budget_max"); ok {
		f.BudgetMax = &v
	}

	result, err := h.requests.Browse(c.Request.Context(), act, f)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Move requests retrieved successfully", result)
}

type updateStatusReq struct {
	Status string `json:"status" binding:"required"`
}

func (h *MoveRequestHandler) UpdateStatus(c *gin.Context) {
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

	mr, err := h.requests.UpdateStatus(c.Request.Context(), act, id, moverequest.Status(req.Status))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Move request status updated successfully", mr)
}

type assignDriverReq struct {
	DriverID int64 `json:"driver_id" binding:"required"`
}

func (h *MoveRequestHandler) AssignDriver(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req assignDriverReq
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	result, err := h.fulfillment.AssignDriver(c.Request.Context(), act, id, types.ID(req.DriverID))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Driver assigned successfully. Move request status updated to in-progress.", result)
}
