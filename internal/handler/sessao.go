package handler

import (
	"net/http"

	"postocaixa/internal/dto"
	"postocaixa/internal/service"

	"github.com/gin-gonic/gin"
)

type SessaoHandler struct{ svc service.SessaoService }

func NewSessaoHandler(svc service.SessaoService) *SessaoHandler { return &SessaoHandler{svc: svc} }

// Bootstrap godoc
// @Summary Verifica a conta ao entrar na tela de turno
// @Description Resolve o frentista (criando-o se faltar) e abre o caixa do dia
// @Description quando possível. Sempre responde 200; o campo status diz o próximo passo.
// @Tags sessao
// @Produce json
// @Param X-Posto-ID header int false "Posto selecionado"
// @Success 200 {object} dto.BootstrapResponse
// @Router /v1/sessao/bootstrap [post]
func (h *SessaoHandler) Bootstrap(c *gin.Context) {
	postoID, _ := postoDe(c)
	c.JSON(http.StatusOK, h.svc.Bootstrap(c.Request.Context(), identidadeDe(c), postoID))
}

// AbrirCaixa godoc
// @Summary Abertura manual do caixa
// @Tags sessao
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AbrirCaixaRequest true "Turno"
// @Success 201 {object} dto.AberturaCaixaResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/caixa/abrir [post]
func (h *SessaoHandler) AbrirCaixa(c *gin.Context) {
	var req dto.AbrirCaixaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AbrirCaixa(c.Request.Context(), identidadeDe(c), req)
	if err != nil {
		responderErro(c, err, "Erro ao abrir o caixa")
		return
	}
	c.JSON(http.StatusCreated, resp)
}
