package handlers

import (
	"net/http"

	otcore "crewtime.app/crewtime/overtime/core"
	web "crewtime.app/crewtime/web/common"
	"crewtime.app/crewtime/web/middlewares"
	"github.com/gin-gonic/gin"
)

type StartSessionDTO struct {
	OvertimeRequestID string `json:"overtimeRequestId" binding:"required"`
	TimecardEntryID   string `json:"timecardEntryId"`
}

func (ep *Endpoint) StartSession(c *gin.Context) {
	var dto StartSessionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	identity := middlewares.GetIdentity(c)
	ctx := c.Request.Context()

	db, err := ep.dm.GetDB(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, web.NewErrorResponse(err.Error()))
		return
	}

	session, err := ep.tracker.Start(ctx, db, otcore.StartSessionInput{
		OrganizationID:    identity.OrganizationID,
		OvertimeRequestID: dto.OvertimeRequestID,
		TimecardEntryID:   dto.TimecardEntryID,
		CallerID:          identity.ID,
		CallerName:        identity.UniqueName,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, web.NewSuccessResponse(session))
}

type SessionUsageDTO struct {
	Session interface{}  `json:"session"`
	Usage   otcore.Usage `json:"usage"`
}

func (ep *Endpoint) UpdateSessionHours(c *gin.Context) {
	identity := middlewares.GetIdentity(c)
	ctx := c.Request.Context()

	db, err := ep.dm.GetDB(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, web.NewErrorResponse(err.Error()))
		return
	}

	session, usage, err := ep.tracker.UpdateHours(ctx, db, c.Param("id"), identity.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(SessionUsageDTO{Session: session, Usage: usage}))
}

func (ep *Endpoint) EndSession(c *gin.Context) {
	identity := middlewares.GetIdentity(c)
	ctx := c.Request.Context()

	db, err := ep.dm.GetDB(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, web.NewErrorResponse(err.Error()))
		return
	}

	session, err := ep.tracker.End(ctx, db, c.Param("id"), identity.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(session))
}

func (ep *Endpoint) GetActiveSession(c *gin.Context) {
	identity := middlewares.GetIdentity(c)
	ctx := c.Request.Context()

	// Managers may ask about another member; default is the caller.
	userID := c.DefaultQuery("userId", identity.ID)

	db, err := ep.dm.GetDB(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, web.NewErrorResponse(err.Error()))
		return
	}

	session, err := ep.tracker.GetActive(ctx, db, identity.OrganizationID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if session == nil {
		c.JSON(http.StatusOK, web.NewSuccessResponse(gin.H{"active": false}))
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(gin.H{"active": true, "session": session}))
}
