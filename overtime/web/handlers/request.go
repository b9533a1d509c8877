package handlers

import (
	"net/http"
	"strconv"

	otcore "crewtime.app/crewtime/overtime/core"
	web "crewtime.app/crewtime/web/common"
	"crewtime.app/crewtime/web/middlewares"
	"github.com/gin-gonic/gin"
)

type CreateRequestDTO struct {
	RequestType    string        `json:"requestType" binding:"required,oneof=standard_request manager_inquiry"`
	RecipientID    string        `json:"recipientId" binding:"required"`
	RecipientName  string        `json:"recipientName"`
	ManagerID      string        `json:"managerId" binding:"required"`
	EmployeeID     string        `json:"employeeId" binding:"required"`
	ProjectID      *string       `json:"projectId,omitempty"`
	Reason         string        `json:"reason" binding:"required"`
	EstimatedHours float64       `json:"estimatedHours" binding:"omitempty,gt=0"`
	RequestedDate  *web.DateOnly `json:"requestedDate,omitempty"`
}

func (ep *Endpoint) CreateRequest(c *gin.Context) {
	var dto CreateRequestDTO
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

	in := otcore.CreateRequestInput{
		OrganizationID: identity.OrganizationID,
		RequesterID:    identity.ID,
		RequesterName:  identity.UniqueName,
		RequestType:    dto.RequestType,
		RecipientID:    dto.RecipientID,
		RecipientName:  dto.RecipientName,
		ManagerID:      dto.ManagerID,
		EmployeeID:     dto.EmployeeID,
		ProjectID:      dto.ProjectID,
		Reason:         dto.Reason,
		EstimatedHours: dto.EstimatedHours,
	}
	in.RequestedDate = dto.RequestedDate.TimePtr()

	request, err := ep.workflow.Create(ctx, db, in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, web.NewSuccessResponse(request))
}

func (ep *Endpoint) GetRequest(c *gin.Context) {
	identity := middlewares.GetIdentity(c)
	ctx := c.Request.Context()

	db, err := ep.dm.GetDB(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, web.NewErrorResponse(err.Error()))
		return
	}

	request, err := ep.workflow.Get(ctx, db, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if request.OrganizationID != identity.OrganizationID {
		respondError(c, otcore.NewNotFoundError("overtime request", c.Param("id")))
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(request))
}

func (ep *Endpoint) SearchRequests(c *gin.Context) {
	identity := middlewares.GetIdentity(c)
	ctx := c.Request.Context()

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	db, err := ep.dm.GetDB(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, web.NewErrorResponse(err.Error()))
		return
	}

	requests, err := ep.workflow.List(ctx, db,
		identity.OrganizationID, c.Query("status"), c.Query("participantId"), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSearchResponse(requests, int64(len(requests)), limit))
}

type RespondRequestDTO struct {
	Response       string `json:"response" binding:"required,oneof=accepted declined"`
	ResponseReason string `json:"responseReason"`
}

func (ep *Endpoint) RespondRequest(c *gin.Context) {
	var dto RespondRequestDTO
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

	request, err := ep.workflow.Respond(ctx, db, c.Param("id"), identity.ID, dto.Response, dto.ResponseReason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(request))
}

type CertifyRequestDTO struct {
	CertificationNotes string `json:"certificationNotes"`
}

func (ep *Endpoint) CertifyRequest(c *gin.Context) {
	var dto CertifyRequestDTO
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

	request, err := ep.workflow.Certify(ctx, db, c.Param("id"), identity.ID, dto.CertificationNotes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(request))
}

type ApproveRequestDTO struct {
	ExecNotes string `json:"execNotes"`
}

func (ep *Endpoint) ApproveRequest(c *gin.Context) {
	var dto ApproveRequestDTO
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

	request, err := ep.workflow.Approve(ctx, db, c.Param("id"), identity.ID, dto.ExecNotes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(request))
}

type RejectRequestDTO struct {
	RejectionReason string `json:"rejectionReason" binding:"required"`
}

func (ep *Endpoint) RejectRequest(c *gin.Context) {
	var dto RejectRequestDTO
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

	request, err := ep.workflow.Reject(ctx, db, c.Param("id"), identity.ID, dto.RejectionReason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(request))
}
