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

// EnrollmentHandler exposes the school enrollment workflow endpoints.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// Create godoc
// @Summary Request a school enrollment
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.CreateEnrollmentRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope "School has no seats available"
// @Router /matriculas [post]
func (h *EnrollmentHandler) Create(c *gin.Context) {
	var req service.CreateEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.enrollments.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// List godoc
// @Summary List enrollments
// @Tags Enrollments
// @Produce json
// @Param cidadaoId query string false "Filter by citizen"
// @Param escolaId query string false "Filter by school"
// @Param status query string false "Filter by status"
// @Param sort query string false "Sort field"
// @Param order query string false "Sort order"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /matriculas [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	var filter models.EnrollmentFilter
	filter.CitizenID = c.Query("cidadaoId")
	filter.SchoolID = c.Query("escolaId")
	filter.Status = models.EnrollmentStatus(c.Query("status"))
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	enrollments, pagination, err := h.enrollments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, pagination)
}

// Get godoc
// @Summary Get enrollment detail
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /matriculas/{id} [get]
func (h *EnrollmentHandler) Get(c *gin.Context) {
	enrollment, err := h.enrollments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// GetByProtocol godoc
// @Summary Track an enrollment by protocol
// @Tags Enrollments
// @Produce json
// @Param protocolo path string true "Tracking protocol"
// @Success 200 {object} response.Envelope
// @Router /matriculas/protocolo/{protocolo} [get]
func (h *EnrollmentHandler) GetByProtocol(c *gin.Context) {
	enrollment, err := h.enrollments.GetByProtocol(c.Request.Context(), c.Param("protocolo"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Transition godoc
// @Summary Change enrollment status
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body service.TransitionEnrollmentRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope "Seats exhausted or concurrent update"
// @Failure 422 {object} response.Envelope "Transition not allowed"
// @Router /matriculas/{id}/status [patch]
func (h *EnrollmentHandler) Transition(c *gin.Context) {
	var req service.TransitionEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.enrollments.Transition(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Receipt godoc
// @Summary Download the enrollment receipt PDF
// @Tags Enrollments
// @Produce application/pdf
// @Param id path string true "Enrollment ID"
// @Success 200 {string} string "PDF content"
// @Router /matriculas/{id}/comprovante [get]
func (h *EnrollmentHandler) Receipt(c *gin.Context) {
	doc, err := h.enrollments.Receipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="comprovante_matricula.pdf"`)
	c.Data(http.StatusOK, "application/pdf", doc)
}

// ListByCitizen godoc
// @Summary List a citizen's enrollments
// @Tags Enrollments
// @Produce json
// @Param id path string true "Citizen ID"
// @Success 200 {object} response.Envelope
// @Router /cidadaos/{id}/matriculas [get]
func (h *EnrollmentHandler) ListByCitizen(c *gin.Context) {
	enrollments, err := h.enrollments.ListByCitizen(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, nil)
}
