package handlers

import (
	"errors"
	"net/http"

	"crewtime.app/crewtime/core"
	otcore "crewtime.app/crewtime/overtime/core"
	web "crewtime.app/crewtime/web/common"
	"github.com/gin-gonic/gin"
)

type Endpoint struct {
	dm       *core.DatabaseManager
	workflow *otcore.Workflow
	tracker  *otcore.SessionTracker
}

// Register wires the overtime API onto an authenticated route group.
func Register(r *gin.RouterGroup, dm *core.DatabaseManager, workflow *otcore.Workflow, tracker *otcore.SessionTracker) {
	ep := &Endpoint{dm: dm, workflow: workflow, tracker: tracker}

	r.POST("/requests", ep.CreateRequest)
	r.GET("/requests", ep.SearchRequests)
	r.GET("/requests/:id", ep.GetRequest)
	r.POST("/requests/:id/respond", ep.RespondRequest)
	r.POST("/requests/:id/certify", ep.CertifyRequest)
	r.POST("/requests/:id/approve", ep.ApproveRequest)
	r.POST("/requests/:id/reject", ep.RejectRequest)

	r.POST("/sessions/start", ep.StartSession)
	r.PUT("/sessions/:id/hours", ep.UpdateSessionHours)
	r.POST("/sessions/:id/end", ep.EndSession)
	r.GET("/sessions/active", ep.GetActiveSession)

	r.GET("/notifications", ep.ListNotifications)
	r.POST("/notifications/:id/read", ep.ReadNotification)
}

// respondError maps the core error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is a 500 with the raw message.
func respondError(c *gin.Context, err error) {
	var (
		validation *otcore.ValidationError
		permission *otcore.PermissionError
		state      *otcore.StateError
		notFound   *otcore.NotFoundError
		limit      *otcore.ResourceLimitError
	)

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, web.NewCodedErrorResponse("validation_error", err.Error()))
	case errors.As(err, &permission):
		c.JSON(http.StatusForbidden, web.NewCodedErrorResponse("permission_error", err.Error()))
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, web.NewCodedErrorResponse("not_found", err.Error()))
	case errors.As(err, &state):
		c.JSON(http.StatusConflict, web.NewCodedErrorResponse("state_error", err.Error()))
	case errors.As(err, &limit):
		c.JSON(http.StatusUnprocessableEntity, web.NewCodedErrorResponse("resource_limit", err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, web.NewErrorResponse(err.Error()))
	}
}
