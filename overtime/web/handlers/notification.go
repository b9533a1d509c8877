package handlers

import (
	"net/http"
	"strconv"

	"crewtime.app/crewtime/overtime/notify"
	web "crewtime.app/crewtime/web/common"
	"crewtime.app/crewtime/web/middlewares"
	"github.com/gin-gonic/gin"
)

func (ep *Endpoint) ListNotifications(c *gin.Context) {
	identity := middlewares.GetIdentity(c)
	ctx := c.Request.Context()

	unreadOnly := c.Query("unread") == "true"
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	db, err := ep.dm.GetDB(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, web.NewErrorResponse(err.Error()))
		return
	}

	rows, err := notify.ListForUser(ctx, db, identity.OrganizationID, identity.ID, unreadOnly, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, web.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, web.NewSearchResponse(rows, int64(len(rows)), limit))
}

func (ep *Endpoint) ReadNotification(c *gin.Context) {
	identity := middlewares.GetIdentity(c)
	ctx := c.Request.Context()

	db, err := ep.dm.GetDB(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, web.NewErrorResponse(err.Error()))
		return
	}

	if err := notify.MarkRead(ctx, db, identity.OrganizationID, identity.ID, c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, web.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, web.NewEmptyResponse())
}
