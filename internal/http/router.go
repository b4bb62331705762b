// README: HTTP router registration. Everything under /api sits behind the
// bearer-token middleware; /health is open.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AhmedDevOp360/Transport-Backend/internal/http/handlers"
	"github.com/AhmedDevOp360/Transport-Backend/internal/http/middleware"
	"github.com/AhmedDevOp360/Transport-Backend/internal/infra"
	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/application"
	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/driver"
	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/fulfillment"
	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/moverequest"
	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/reporting"
	"github.com/AhmedDevOp360/Transport-Backend/internal/modules/vehicle"
)

type RouterDeps struct {
	MoveRequests *moverequest.Service
	Applications *application.Service
	Fulfillment  *fulfillment.Service
	Drivers      *driver.Service
	Vehicles     *vehicle.Service
	Reporting    *reporting.Service
	Verifier     infra.TokenVerifier
	Log          *zap.Logger
}

func NewRouter(deps RouterDeps) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logging(deps.Log),
		middleware.Recovery(deps.Log),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api", middleware.Auth(deps.Verifier))

	mrHandler := handlers.NewMoveRequestHandler(deps.MoveRequests, deps.Fulfillment)
	api.POST("/move-requests", mrHandler.Create)
	api.GET("/move-requests", mrHandler.Browse)
	api.POST("/move-requests/:id/status", mrHandler.UpdateStatus)
	api.POST("/move-requests/:id/assign-driver", mrHandler.AssignDriver)

	appHandler := handlers.NewApplicationHandler(deps.Applications)
	api.POST("/move-requests/:id/apply", appHandler.Submit)
	api.GET("/move-requests/:id/applications", appHandler.List)
	api.GET("/move-requests/:id/applications/:appID", appHandler.View)
	api.GET("/move-requests/:id/applications/:appID/detail", appHandler.Detail)
	api.POST("/move-requests/:id/applications/:appID", appHandler.Update)
	api.POST("/move-requests/:id/applications/:appID/status", appHandler.Decide)

	reportHandler := handlers.NewReportingHandler(deps.Reporting)
	api.GET("/active-jobs", reportHandler.ActiveJobs)
	api.GET("/active-moves", reportHandler.ActiveMoves)
	api.GET("/move-history", reportHandler.MoveHistory)

	driverHandler := handlers.NewDriverHandler(deps.Drivers)
	api.GET("/drivers", driverHandler.List)
	api.POST("/drivers", driverHandler.Create)
	api.GET("/drivers/alerts", driverHandler.Alerts)
	api.GET("/drivers/performance", driverHandler.Performance)
	api.GET("/drivers/:id", driverHandler.Get)
	api.POST("/drivers/:id", driverHandler.Update)
	api.POST("/drivers/:id/status", driverHandler.UpdateStatus)
	api.DELETE("/drivers/:id", driverHandler.Delete)
	api.POST("/drivers/:id/assign-vehicle", driverHandler.AssignVehicle)
	api.POST("/drivers/:id/unassign-vehicle", driverHandler.UnassignVehicle)

	vehicleHandler := handlers.NewVehicleHandler(deps.Vehicles)
	api.GET("/vehicles", vehicleHandler.List)
	api.POST("/vehicles", vehicleHandler.Create)
	api.GET("/vehicles/alerts", vehicleHandler.Alerts)
	api.GET("/vehicles/performance", vehicleHandler.Performance)
	api.GET("/vehicles/:id", vehicleHandler.Get)
	api.POST("/vehicles/:id", vehicleHandler.Update)
	api.POST("/vehicles/:id/status", vehicleHandler.UpdateStatus)
	api.DELETE("/vehicles/:id", vehicleHandler.Delete)

	return r
}
