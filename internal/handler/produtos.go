package handler

import (
	"net/http"

	"postocaixa/internal/apierror"
	"postocaixa/internal/dto"
	"postocaixa/internal/service"

	"github.com/gin-gonic/gin"
)

type ProdutosHandler struct{ svc service.VendaProdutoService }

func NewProdutosHandler(svc service.VendaProdutoService) *ProdutosHandler {
	return &ProdutosHandler{svc: svc}
}

// Listar godoc
// @Summary Produtos ativos do posto
// @Tags produtos
// @Produce json
// @Param X-Posto-ID header int false "Posto selecionado"
// @Success 200 {array} dto.ProdutoResponse
// @Router /v1/produtos [get]
func (h *ProdutosHandler) Listar(c *gin.Context) {
	postoID, ok := postoDe(c)
	if !ok {
		c.JSON(http.StatusOK, []dto.ProdutoResponse{})
		return
	}
	resp, err := h.svc.ListarProdutos(c.Request.Context(), postoID)
	if err != nil {
		responderErro(c, err, "Erro ao listar produtos")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarVenda godoc
// @Summary Registra a venda de um produto pelo frentista logado
// @Tags produtos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Posto-ID header int true "Posto selecionado"
// @Param body body dto.VendaProdutoRequest true "Produto e quantidade"
// @Success 201 {object} dto.VendaProdutoResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/vendas-produto [post]
func (h *ProdutosHandler) RegistrarVenda(c *gin.Context) {
	postoID, ok := postoDe(c)
	if !ok {
		c.JSON(http.StatusBadRequest, apierror.New(msgSemPosto))
		return
	}
	var req dto.VendaProdutoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), identidadeDe(c), postoID, req)
	if err != nil {
		responderErro(c, err, "Erro ao registrar venda")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// VendasDeHoje godoc
// @Summary Vendas de hoje do frentista logado
// @Tags produtos
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.VendaProdutoResponse
// @Router /v1/vendas-produto/hoje [get]
func (h *ProdutosHandler) VendasDeHoje(c *gin.Context) {
	resp, err := h.svc.VendasDeHoje(c.Request.Context(), identidadeDe(c))
	if err != nil {
		responderErro(c, err, "Erro ao listar vendas")
		return
	}
	c.JSON(http.StatusOK, resp)
}
