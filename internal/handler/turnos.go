package handler

import (
	"net/http"

	"postocaixa/internal/apierror"
	"postocaixa/internal/dto"
	"postocaixa/internal/service"

	"github.com/gin-gonic/gin"
)

type TurnosHandler struct{ svc service.TurnoService }

func NewTurnosHandler(svc service.TurnoService) *TurnosHandler { return &TurnosHandler{svc: svc} }

// Listar godoc
// @Summary Turnos do posto, por horário de início
// @Tags turnos
// @Produce json
// @Param X-Posto-ID header int false "Posto selecionado"
// @Success 200 {array} dto.TurnoResponse
// @Router /v1/turnos [get]
func (h *TurnosHandler) Listar(c *gin.Context) {
	postoID, ok := postoDe(c)
	if !ok {
		c.JSON(http.StatusOK, []dto.TurnoResponse{})
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), postoID)
	if err != nil {
		responderErro(c, err, "Erro ao listar turnos")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Atual godoc
// @Summary Turno vigente no horário local do posto
// @Tags turnos
// @Produce json
// @Param X-Posto-ID header int false "Posto selecionado"
// @Success 200 {object} dto.TurnoResponse
// @Success 204
// @Router /v1/turnos/atual [get]
func (h *TurnosHandler) Atual(c *gin.Context) {
	postoID, ok := postoDe(c)
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	t, err := h.svc.Atual(c.Request.Context(), postoID)
	if err != nil {
		responderErro(c, err, "Erro ao consultar turno")
		return
	}
	if t == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, service.TurnoResponse(t))
}

// Criar godoc
// @Summary Cadastra um turno
// @Tags turnos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Posto-ID header int true "Posto selecionado"
// @Param body body dto.SalvarTurnoRequest true "Turno"
// @Success 201 {object} dto.TurnoResponse
// @Router /v1/turnos [post]
func (h *TurnosHandler) Criar(c *gin.Context) {
	postoID, ok := postoDe(c)
	if !ok {
		c.JSON(http.StatusBadRequest, apierror.New("Selecione um posto"))
		return
	}
	var req dto.SalvarTurnoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Criar(c.Request.Context(), postoID, req)
	if err != nil {
		responderErro(c, err, "Erro ao salvar turno")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Atualizar godoc
// @Summary Altera um turno
// @Tags turnos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Posto-ID header int true "Posto selecionado"
// @Param id path int true "ID do turno"
// @Param body body dto.SalvarTurnoRequest true "Turno"
// @Success 200 {object} dto.TurnoResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/turnos/{id} [put]
func (h *TurnosHandler) Atualizar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	postoID, ok := postoDe(c)
	if !ok {
		c.JSON(http.StatusBadRequest, apierror.New("Selecione um posto"))
		return
	}
	var req dto.SalvarTurnoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Atualizar(c.Request.Context(), postoID, id, req)
	if err != nil {
		responderErro(c, err, "Erro ao salvar turno")
		return
	}
	c.JSON(http.StatusOK, resp)
}
