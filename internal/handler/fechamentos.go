package handler

import (
	"net/http"
	"strconv"

	"postocaixa/internal/apierror"
	"postocaixa/internal/dto"
	"postocaixa/internal/infra"
	"postocaixa/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const msgSemPosto = "Selecione um posto antes de continuar."

type FechamentosHandler struct {
	svc    service.FechamentoService
	pdfDir string
}

func NewFechamentosHandler(svc service.FechamentoService, pdfDir string) *FechamentosHandler {
	return &FechamentosHandler{svc: svc, pdfDir: pdfDir}
}

// Submeter godoc
// @Summary Envia o fechamento de caixa de um frentista
// @Description Cria ou reaproveita o fechamento do (data, turno, posto), grava a linha do
// @Description frentista e recalcula os totais. Um segundo envio do mesmo frentista é rejeitado.
// @Tags fechamentos
// @Accept json
// @Produce json
// @Param X-Posto-ID header int true "Posto selecionado"
// @Param body body dto.FechamentoRequest true "Valores informados"
// @Success 201 {object} dto.ResultadoFechamento
// @Failure 409 {object} apierror.Falha
// @Failure 422 {object} apierror.Falha
// @Failure 500 {object} apierror.Falha
// @Router /v1/fechamentos [post]
func (h *FechamentosHandler) Submeter(c *gin.Context) {
	postoID, ok := postoDe(c)
	if !ok {
		c.JSON(http.StatusBadRequest, apierror.NewFalha(msgSemPosto))
		return
	}
	var req dto.FechamentoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Submeter(c.Request.Context(), identidadeDe(c), postoID, req)
	if err != nil {
		responderFalha(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Desfazer godoc
// @Summary Desfaz o fechamento de um frentista
// @Tags fechamentos
// @Accept json
// @Produce json
// @Param X-Posto-ID header int true "Posto selecionado"
// @Param body body dto.DesfazerFechamentoRequest true "Frentista, data e turno"
// @Success 200 {object} dto.ResultadoFechamento
// @Failure 404 {object} apierror.Falha
// @Router /v1/fechamentos/desfazer [post]
func (h *FechamentosHandler) Desfazer(c *gin.Context) {
	postoID, ok := postoDe(c)
	if !ok {
		c.JSON(http.StatusBadRequest, apierror.NewFalha(msgSemPosto))
		return
	}
	var req dto.DesfazerFechamentoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Desfazer(c.Request.Context(), postoID, req)
	if err != nil {
		responderFalha(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Calcular godoc
// @Summary Prévia da conciliação a partir do texto digitado
// @Tags fechamentos
// @Accept json
// @Produce json
// @Param body body dto.CalcularRequest true "Campos do formulário"
// @Success 200 {object} dto.ConciliacaoResponse
// @Router /v1/fechamentos/calcular [post]
func (h *FechamentosHandler) Calcular(c *gin.Context) {
	var req dto.CalcularRequest
	if !bindAndValidate(c, &req) {
		return
	}
	c.JSON(http.StatusOK, h.svc.Calcular(req))
}

// Fecharam godoc
// @Summary Frentistas que já fecharam o turno
// @Tags fechamentos
// @Produce json
// @Param X-Posto-ID header int false "Posto selecionado"
// @Param data query string true "Data (AAAA-MM-DD)"
// @Param turno_id query int true "Turno"
// @Success 200 {object} dto.FecharamResponse
// @Router /v1/fechamentos/fecharam [get]
func (h *FechamentosHandler) Fecharam(c *gin.Context) {
	postoID, ok := postoDe(c)
	turnoID, err := strconv.ParseInt(c.Query("turno_id"), 10, 64)
	if !ok || err != nil || turnoID <= 0 || c.Query("data") == "" {
		c.JSON(http.StatusOK, dto.FecharamResponse{FrentistaIDs: []int64{}})
		return
	}
	ids, err := h.svc.Fecharam(c.Request.Context(), postoID, c.Query("data"), turnoID)
	if err != nil {
		responderErro(c, err, "Erro ao consultar fechamentos")
		return
	}
	c.JSON(http.StatusOK, dto.FecharamResponse{FrentistaIDs: ids})
}

// Historico godoc
// @Summary Últimos fechamentos de um frentista
// @Tags fechamentos
// @Produce json
// @Param X-Posto-ID header int false "Posto selecionado"
// @Param id path int true "ID do frentista"
// @Param limit query int false "Quantidade (padrão 10)"
// @Success 200 {array} dto.HistoricoItem
// @Router /v1/frentistas/{id}/historico [get]
func (h *FechamentosHandler) Historico(c *gin.Context) {
	frentistaID, ok := paramID(c, "id")
	if !ok {
		return
	}
	postoID, ok := postoDe(c)
	if !ok {
		c.JSON(http.StatusOK, []dto.HistoricoItem{})
		return
	}
	limite, _ := strconv.Atoi(c.Query("limit"))
	resp, err := h.svc.Historico(c.Request.Context(), frentistaID, postoID, limite)
	if err != nil {
		responderErro(c, err, "Erro ao consultar histórico")
		return
	}
	if resp == nil {
		resp = []dto.HistoricoItem{}
	}
	c.JSON(http.StatusOK, resp)
}

// PDF godoc
// @Summary Relatório do fechamento em PDF
// @Tags fechamentos
// @Produce application/pdf
// @Security BearerAuth
// @Param id path int true "ID do fechamento"
// @Success 200 {file} binary
// @Failure 404 {object} apierror.APIError
// @Router /v1/fechamentos/{id}/pdf [get]
func (h *FechamentosHandler) PDF(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	f, notas, err := h.svc.Relatorio(c.Request.Context(), id)
	if err != nil {
		responderErro(c, err, "Erro ao gerar relatório")
		return
	}
	if postoID, ok := postoDe(c); ok && f.PostoID != postoID {
		c.JSON(http.StatusNotFound, apierror.New(service.ErrFechamentoInexistente.Error()))
		return
	}
	path, err := infra.GerarRelatorioFechamento(f, notas, h.pdfDir)
	if err != nil {
		log.Error().Err(err).Int64("fechamento_id", id).Msg("pdf generation failed")
		c.JSON(http.StatusInternalServerError, apierror.New("Erro ao gerar relatório"))
		return
	}
	c.FileAttachment(path, "fechamento_"+strconv.FormatInt(id, 10)+".pdf")
}
