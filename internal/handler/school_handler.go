package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/prefeitura-sp/central-cidadao-api/internal/models"
	"github.com/prefeitura-sp/central-cidadao-api/internal/service"
	appErrors "github.com/prefeitura-sp/central-cidadao-api/pkg/errors"
	"github.com/prefeitura-sp/central-cidadao-api/pkg/export"
	"github.com/prefeitura-sp/central-cidadao-api/pkg/response"
)

// SchoolHandler exposes the school directory and seat availability endpoints.
type SchoolHandler struct {
	schools *service.SchoolService
	csv     *export.CSVExporter
}

// NewSchoolHandler constructs SchoolHandler.
func NewSchoolHandler(schools *service.SchoolService) *SchoolHandler {
	return &SchoolHandler{schools: schools, csv: export.NewCSVExporter()}
}

// List godoc
// @Summary List schools
// @Tags Schools
// @Produce json
// @Param nivel query string false "Filter by education level"
// @Param bairro query string false "Filter by district"
// @Param nome query string false "Search by name"
// @Param comVagas query bool false "Only schools with open seats"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /escolas [get]
func (h *SchoolHandler) List(c *gin.Context) {
	var filter models.SchoolFilter
	filter.Level = models.EducationLevel(c.Query("nivel"))
	filter.District = strings.TrimSpace(c.Query("bairro"))
	filter.Name = strings.TrimSpace(c.Query("nome"))
	filter.OnlyOpenSeats = c.Query("comVagas") == "true"
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	schools, pagination, err := h.schools.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schools, pagination)
}

// Get godoc
// @Summary Get school with seat figures
// @Tags Schools
// @Produce json
// @Param id path string true "School ID"
// @Success 200 {object} response.Envelope
// @Router /escolas/{id} [get]
func (h *SchoolHandler) Get(c *gin.Context) {
	school, err := h.schools.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, school, nil)
}

// Create godoc
// @Summary Register school
// @Tags Schools
// @Accept json
// @Produce json
// @Param payload body service.CreateSchoolRequest true "School payload"
// @Success 201 {object} response.Envelope
// @Router /escolas [post]
func (h *SchoolHandler) Create(c *gin.Context) {
	var req service.CreateSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	school, err := h.schools.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, school)
}

// Availability godoc
// @Summary Remaining seats for a school
// @Tags Schools
// @Produce json
// @Param id path string true "School ID"
// @Success 200 {object} response.Envelope
// @Router /escolas/{id}/vagas [get]
func (h *SchoolHandler) Availability(c *gin.Context) {
	available, err := h.schools.Available(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"vagas_disponiveis": available}, nil)
}

// Classification godoc
// @Summary Occupancy classification for a school
// @Tags Schools
// @Produce json
// @Param id path string true "School ID"
// @Success 200 {object} response.Envelope
// @Router /escolas/{id}/classificacao [get]
func (h *SchoolHandler) Classification(c *gin.Context) {
	status, err := h.schools.Classify(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status_vagas": status}, nil)
}

// UpdateSeats godoc
// @Summary Adjust school seat total
// @Tags Schools
// @Accept json
// @Produce json
// @Param id path string true "School ID"
// @Param payload body service.UpdateSeatsRequest true "Seat total payload"
// @Success 200 {object} response.Envelope
// @Router /escolas/{id}/vagas [put]
func (h *SchoolHandler) UpdateSeats(c *gin.Context) {
	var req service.UpdateSeatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	school, err := h.schools.UpdateSeatsTotal(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, school, nil)
}

// OccupancyCSV godoc
// @Summary Download the seat occupancy report
// @Tags Schools
// @Produce text/csv
// @Success 200 {string} string "CSV content"
// @Router /escolas/relatorio/ocupacao.csv [get]
func (h *SchoolHandler) OccupancyCSV(c *gin.Context) {
	dataset, err := h.schools.OccupancyReport(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	content, err := h.csv.Render(dataset)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "failed to render report"))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="ocupacao_escolas.csv"`)
	c.Data(http.StatusOK, "text/csv", content)
}
