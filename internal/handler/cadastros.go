package handler

import (
	"net/http"

	"postocaixa/internal/dto"
	"postocaixa/internal/service"

	"github.com/gin-gonic/gin"
)

type CadastrosHandler struct{ svc service.CadastroService }

func NewCadastrosHandler(svc service.CadastroService) *CadastrosHandler {
	return &CadastrosHandler{svc: svc}
}

// ListarFrentistas godoc
// @Summary Frentistas ativos do posto, por nome
// @Tags frentistas
// @Produce json
// @Param X-Posto-ID header int false "Posto selecionado"
// @Success 200 {array} dto.FrentistaResponse
// @Router /v1/frentistas [get]
func (h *CadastrosHandler) ListarFrentistas(c *gin.Context) {
	postoID, ok := postoDe(c)
	if !ok {
		c.JSON(http.StatusOK, []dto.FrentistaResponse{})
		return
	}
	resp, err := h.svc.ListarFrentistas(c.Request.Context(), postoID)
	if err != nil {
		responderErro(c, err, "Erro ao listar frentistas")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AtualizarFrentista godoc
// @Summary Atualiza um frentista (ativo=false desativa)
// @Tags frentistas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID do frentista"
// @Param body body dto.AtualizarFrentistaRequest true "Campos alterados"
// @Success 200 {object} dto.FrentistaResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/frentistas/{id} [patch]
func (h *CadastrosHandler) AtualizarFrentista(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.AtualizarFrentistaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AtualizarFrentista(c.Request.Context(), id, req)
	if err != nil {
		responderErro(c, err, "Erro ao atualizar frentista")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarClientes godoc
// @Summary Clientes ativos do posto
// @Tags clientes
// @Produce json
// @Param X-Posto-ID header int false "Posto selecionado"
// @Param busca query string false "Trecho do nome"
// @Success 200 {array} dto.ClienteResponse
// @Router /v1/clientes [get]
func (h *CadastrosHandler) ListarClientes(c *gin.Context) {
	postoID, ok := postoDe(c)
	if !ok {
		c.JSON(http.StatusOK, []dto.ClienteResponse{})
		return
	}
	resp, err := h.svc.ListarClientes(c.Request.Context(), postoID, c.Query("busca"))
	if err != nil {
		responderErro(c, err, "Erro ao listar clientes")
		return
	}
	c.JSON(http.StatusOK, resp)
}
