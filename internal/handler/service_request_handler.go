package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prefeitura-sp/central-cidadao-api/internal/models"
	"github.com/prefeitura-sp/central-cidadao-api/internal/service"
	appErrors "github.com/prefeitura-sp/central-cidadao-api/pkg/errors"
	"github.com/prefeitura-sp/central-cidadao-api/pkg/response"
)

// ServiceRequestHandler exposes the municipal ticketing endpoints.
type ServiceRequestHandler struct {
	requests *service.ServiceRequestService
}

// NewServiceRequestHandler constructs ServiceRequestHandler.
func NewServiceRequestHandler(requests *service.ServiceRequestService) *ServiceRequestHandler {
	return &ServiceRequestHandler{requests: requests}
}

// Create godoc
// @Summary Open a service request
// @Tags ServiceRequests
// @Accept json
// @Produce json
// @Param payload body service.CreateServiceRequestRequest true "Service request payload"
// @Success 201 {object} response.Envelope
// @Router /solicitacoes [post]
func (h *ServiceRequestHandler) Create(c *gin.Context) {
	var req service.CreateServiceRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	request, err := h.requests.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// List godoc
// @Summary List service requests
// @Tags ServiceRequests
// @Produce json
// @Param cidadaoId query string false "Filter by citizen"
// @Param tipo query string false "Filter by service type"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /solicitacoes [get]
func (h *ServiceRequestHandler) List(c *gin.Context) {
	var filter models.ServiceRequestFilter
	filter.CitizenID = c.Query("cidadaoId")
	filter.Type = models.ServiceType(c.Query("tipo"))
	filter.Status = models.RequestStatus(c.Query("status"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	requests, pagination, err := h.requests.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, pagination)
}

// Get godoc
// @Summary Get service request
// @Tags ServiceRequests
// @Produce json
// @Param id path string true "Service request ID"
// @Success 200 {object} response.Envelope
// @Router /solicitacoes/{id} [get]
func (h *ServiceRequestHandler) Get(c *gin.Context) {
	request, err := h.requests.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// GetByProtocol godoc
// @Summary Track a service request by protocol
// @Tags ServiceRequests
// @Produce json
// @Param protocolo path string true "Tracking protocol"
// @Success 200 {object} response.Envelope
// @Router /solicitacoes/protocolo/{protocolo} [get]
func (h *ServiceRequestHandler) GetByProtocol(c *gin.Context) {
	request, err := h.requests.GetByProtocol(c.Request.Context(), c.Param("protocolo"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// UpdateStatus godoc
// @Summary Change service request status
// @Tags ServiceRequests
// @Accept json
// @Produce json
// @Param id path string true "Service request ID"
// @Param payload body service.UpdateRequestStatusRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Router /solicitacoes/{id}/status [patch]
func (h *ServiceRequestHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateRequestStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	request, err := h.requests.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}
