package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prefeitura-sp/central-cidadao-api/internal/service"
	appErrors "github.com/prefeitura-sp/central-cidadao-api/pkg/errors"
	"github.com/prefeitura-sp/central-cidadao-api/pkg/response"
)

// CitizenHandler exposes citizen profile endpoints.
type CitizenHandler struct {
	citizens *service.CitizenService
}

// NewCitizenHandler constructs CitizenHandler.
func NewCitizenHandler(citizens *service.CitizenService) *CitizenHandler {
	return &CitizenHandler{citizens: citizens}
}

// List godoc
// @Summary List citizens
// @Tags Citizens
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /cidadaos [get]
func (h *CitizenHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	citizens, pagination, err := h.citizens.List(c.Request.Context(), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, citizens, pagination)
}

// Get godoc
// @Summary Get citizen
// @Tags Citizens
// @Produce json
// @Param id path string true "Citizen ID"
// @Success 200 {object} response.Envelope
// @Router /cidadaos/{id} [get]
func (h *CitizenHandler) Get(c *gin.Context) {
	citizen, err := h.citizens.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, citizen, nil)
}

// GetByCPF godoc
// @Summary Get citizen by CPF
// @Tags Citizens
// @Produce json
// @Param cpf path string true "CPF, digits only"
// @Success 200 {object} response.Envelope
// @Router /cidadaos/cpf/{cpf} [get]
func (h *CitizenHandler) GetByCPF(c *gin.Context) {
	citizen, err := h.citizens.GetByCPF(c.Request.Context(), c.Param("cpf"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, citizen, nil)
}

// Create godoc
// @Summary Register citizen
// @Tags Citizens
// @Accept json
// @Produce json
// @Param payload body service.CreateCitizenRequest true "Citizen payload"
// @Success 201 {object} response.Envelope
// @Router /cidadaos [post]
func (h *CitizenHandler) Create(c *gin.Context) {
	var req service.CreateCitizenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	citizen, err := h.citizens.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, citizen)
}

// Update godoc
// @Summary Update citizen profile
// @Tags Citizens
// @Accept json
// @Produce json
// @Param id path string true "Citizen ID"
// @Param payload body service.UpdateCitizenRequest true "Citizen payload"
// @Success 200 {object} response.Envelope
// @Router /cidadaos/{id} [put]
func (h *CitizenHandler) Update(c *gin.Context) {
	var req service.UpdateCitizenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	citizen, err := h.citizens.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, citizen, nil)
}

// Delete godoc
// @Summary Remove citizen
// @Tags Citizens
// @Param id path string true "Citizen ID"
// @Success 204
// @Router /cidadaos/{id} [delete]
func (h *CitizenHandler) Delete(c *gin.Context) {
	if err := h.citizens.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
