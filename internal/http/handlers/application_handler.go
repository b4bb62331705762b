// README: Application (bid) handlers: submit, update, accept/reject, list
// and detail views.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/application"
)

type ApplicationHandler struct {
	applications *application.Service
}

func NewApplicationHandler(svc *application.Service) *ApplicationHandler {
	return &ApplicationHandler{applications: svc}
}

type submitApplicationReq struct {
	OfferedPrice float64                    `json:"offered_price" binding:"min=0"`
	DeliveryTime string                     `json:"delivery_time" binding:"required,max=100"`
	Message      *string                    `json:"message"`
	Negotiable   bool                       `json:"negotiable"`
	Services     []application.ServicePatch `json:"services" binding:"dive"`
}

func (h *ApplicationHandler) Submit(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req submitApplicationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	app, err := h.applications.Submit(c.Request.Context(), act, id, application.SubmitCommand{
		OfferedPrice: req.OfferedPrice,
		DeliveryTime: req.DeliveryTime,
		Message:      req.Message,
		Negotiable:   req.Negotiable,
		Services:     req.Services,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Application submitted successfully", app)
}

type updateApplicationReq struct {
	OfferedPrice *float64                    `json:"offered_price"`
	DeliveryTime *string                     `json:"delivery_time"`
	Message      *string                     `json:"message"`
	Negotiable   *bool                       `json:"negotiable"`
	Services     *[]application.ServicePatch `json:"services"`
}

func (h *ApplicationHandler) Update(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	appID, ok := paramID(c, "appID")
	if !ok {
		return
	}

	var req updateApplicationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	app, err := h.applications.Update(c.Request.Context(), act, id, appID, application.UpdateCommand{
		OfferedPrice: req.OfferedPrice,
		DeliveryTime: req.DeliveryTime,
		Message:      req.Message,
		Negotiable:   req.Negotiable,
		Services:     req.Services,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Application updated successfully", app)
}

type decideApplicationReq struct {
	Status string `json:"status" binding:"required,oneof=accepted rejected"`
}

func (h *ApplicationHandler) Decide(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	appID, ok := paramID(c, "appID")
	if !ok {
		return
	}

	var req decideApplicationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	app, message, err := h.applications.Decide(c.Request.Context(), act, id, appID, application.Decision(req.Status))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, message, app)
}

func (h *ApplicationHandler) List(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	result, err := h.applications.List(c.Request.Context(), act, id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Applications retrieved successfully", result)
}

func (h *ApplicationHandler) View(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	appID, ok := paramID(c, "appID")
	if !ok {
		return
	}

	app, err := h.applications.View(c.Request.Context(), act, id, appID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Application retrieved successfully", app)
}

func (h *ApplicationHandler) Detail(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	appID, ok := paramID(c, "appID")
	if !ok {
		return
	}

	detail, err := h.applications.Detail(c.Request.Context(), act, id, appID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Application details retrieved successfully", detail)
}
