package handler

import (
	"context"
	"net/http"
	"testing"

	"postocaixa/internal/dto"
	"postocaixa/internal/middleware"
	"postocaixa/internal/model"
	"postocaixa/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubTurnos struct {
	atual *model.Turno
	posto int64
}

func (s *stubTurnos) Listar(_ context.Context, postoID int64) ([]dto.TurnoResponse, error) {
	s.posto = postoID
	return []dto.TurnoResponse{{ID: 1, Nome: "Manhã", HorarioInicio: "06:00", HorarioFim: "14:00", Ativo: true}}, nil
}

func (s *stubTurnos) Atual(_ context.Context, postoID int64) (*model.Turno, error) {
	s.posto = postoID
	return s.atual, nil
}

func (s *stubTurnos) Criar(_ context.Context, postoID int64, req dto.SalvarTurnoRequest) (*dto.TurnoResponse, error) {
	s.posto = postoID
	return &dto.TurnoResponse{ID: 9, Nome: req.Nome, HorarioInicio: req.HorarioInicio, HorarioFim: req.HorarioFim, Ativo: true}, nil
}

func (s *stubTurnos) Atualizar(_ context.Context, _, id int64, _ dto.SalvarTurnoRequest) (*dto.TurnoResponse, error) {
	if id != 9 {
		return nil, service.ErrTurnoNaoEncontrado
	}
	return &dto.TurnoResponse{ID: 9}, nil
}

func turnosRouter(svc service.TurnoService) *gin.Engine {
	h := NewTurnosHandler(svc)
	r := gin.New()
	r.Use(middleware.PostoContext())
	r.GET("/v1/turnos", h.Listar)
	r.GET("/v1/turnos/atual", h.Atual)
	r.POST("/v1/turnos", h.Criar)
	r.PUT("/v1/turnos/:id", h.Atualizar)
	return r
}

func TestTurnosHandler_Listar(t *testing.T) {
	svc := &stubTurnos{}
	r := turnosRouter(svc)

	w := executar(t, r, requisicao{method: http.MethodGet, path: "/v1/turnos"})
	assertStatus(t, w, http.StatusOK)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = executar(t, r, requisicao{method: http.MethodGet, path: "/v1/turnos", posto: "2"})
	assertStatus(t, w, http.StatusOK)
	var turnos []dto.TurnoResponse
	decodificar(t, w, &turnos)
	assert.Len(t, turnos, 1)
	assert.EqualValues(t, 2, svc.posto)
}

func TestTurnosHandler_Atual(t *testing.T) {
	svc := &stubTurnos{}
	r := turnosRouter(svc)

	assertStatus(t, executar(t, r, requisicao{method: http.MethodGet, path: "/v1/turnos/atual"}), http.StatusNoContent)
	assertStatus(t, executar(t, r, requisicao{method: http.MethodGet, path: "/v1/turnos/atual", posto: "2"}), http.StatusNoContent)

	svc.atual = &model.Turno{ID: 3, Nome: "Noite", HorarioInicio: "22:00", HorarioFim: "06:00"}
	w := executar(t, r, requisicao{method: http.MethodGet, path: "/v1/turnos/atual", posto: "2"})
	assertStatus(t, w, http.StatusOK)
	var turno dto.TurnoResponse
	decodificar(t, w, &turno)
	assert.Equal(t, "Noite", turno.Nome)
	assert.True(t, turno.Ativo)
}

func TestTurnosHandler_Salvar(t *testing.T) {
	r := turnosRouter(&stubTurnos{})
	corpo := dto.SalvarTurnoRequest{Nome: "Madrugada", HorarioInicio: "00:00", HorarioFim: "06:00"}

	assertStatus(t, executar(t, r, requisicao{method: http.MethodPost, path: "/v1/turnos", body: corpo}), http.StatusBadRequest)
	assertStatus(t, executar(t, r, requisicao{method: http.MethodPost, path: "/v1/turnos", body: corpo, posto: "1"}), http.StatusCreated)

	ruim := corpo
	ruim.HorarioFim = "25:00"
	assertStatus(t, executar(t, r, requisicao{method: http.MethodPost, path: "/v1/turnos", body: ruim, posto: "1"}), http.StatusUnprocessableEntity)

	assertStatus(t, executar(t, r, requisicao{method: http.MethodPut, path: "/v1/turnos/9", body: corpo, posto: "1"}), http.StatusOK)
	assertStatus(t, executar(t, r, requisicao{method: http.MethodPut, path: "/v1/turnos/4", body: corpo, posto: "1"}), http.StatusNotFound)
	assertStatus(t, executar(t, r, requisicao{method: http.MethodPut, path: "/v1/turnos/x", body: corpo, posto: "1"}), http.StatusBadRequest)
}
