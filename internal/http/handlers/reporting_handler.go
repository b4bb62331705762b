// README: Dashboard handlers: provider active jobs, customer active moves
// and move history.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/reporting"
	"github.com/AhmedDevOp360/Transport-Backend/internal/types"
)

type ReportingHandler struct {
	reports *reporting.Service
}

func NewReportingHandler(svc *reporting.Service) *ReportingHandler {
	return &ReportingHandler{reports: svc}
}

func (h *ReportingHandler) ActiveJobs(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}

	f := reporting.JobsFilter{
		Status:       c.Query("status"),
		CustomerName: c.Query("customer_name"),
	}
	if raw := c.Query("job_id"); raw != "" {
		if id, err := types.ParseID(raw); err == nil {
			f.JobID = &id
		}
	}

	result, err := h.reports.ActiveJobs(c.Request.Context(), act, f)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Active jobs retrieved successfully", result)
}

func (h *ReportingHandler) ActiveMoves(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}

	result, err := h.reports.ActiveMoves(c.Request.Context(), act, reporting.MovesFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Active moves retrieved successfully", result)
}

func (h *ReportingHandler) MoveHistory(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}

	f := reporting.HistoryFilter{
		MoveType: c.Query("move_type"),
		Status:   c.Query("status"),
		Sort:     c.Query("sort"),
	}
	if v, ok := queryInt(c, "page"); ok {
		f.Page = v
	}
	if v, ok := queryInt(c, "per_page"); ok {
		f.PerPage = v
	}

	result, err := h.reports.MoveHistory(c.Request.Context(), act, f)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Move history retrieved successfully", result)
}
