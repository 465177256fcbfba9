package service

import (
	"context"
	"errors"
	"testing"

	"postocaixa/internal/dto"
	"postocaixa/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const postoTeste = int64(1)

type cenarioFechamento struct {
	svc         FechamentoService
	usuarios    *memUsuarios
	frentistas  *memFrentistas
	turnos      *memTurnos
	clientes    *memClientes
	fechamentos *memFechamentos
	notas       *memNotas
	fila        *filaFake
	notificador *notificadorFake
}

var (
	authAna   = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	authBruno = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

func novoCenario(t *testing.T, fallback bool) *cenarioFechamento {
	t.Helper()
	c := &cenarioFechamento{
		usuarios: &memUsuarios{itens: []model.Usuario{
			{ID: 10, Email: "ana@posto.com", Role: model.RoleFrentista, AuthID: authAna},
			{ID: 20, Email: "admin@posto.com", Role: model.RoleAdmin},
		}},
		frentistas: newMemFrentistas(
			model.Frentista{ID: 1, Nome: "Ana", Ativo: true, PostoID: postoTeste, UserID: &authAna},
			model.Frentista{ID: 2, Nome: "Bruno", Ativo: true, PostoID: postoTeste, UserID: &authBruno},
		),
		turnos: &memTurnos{itens: append([]model.Turno{
			{ID: 5, Nome: "Manhã", HorarioInicio: "06:00", HorarioFim: "14:00", PostoID: 99},
		}, turnosPadrao...)},
		clientes: &memClientes{itens: []model.Cliente{
			{ID: 100, Nome: "Transportadora", Ativo: true, PostoID: ptr(postoTeste)},
			{ID: 101, Nome: "Caloteiro", Ativo: true, Bloqueado: true, PostoID: ptr(postoTeste)},
		}},
		notas:       &memNotas{},
		fila:        &filaFake{},
		notificador: &notificadorFake{},
	}
	c.fechamentos = newMemFechamentos(c.notas)
	c.svc = NewFechamentoService(
		c.usuarios, c.frentistas, c.turnos, c.clientes, c.fechamentos, c.notas,
		c.fila, c.notificador, FechamentoConfig{AtribuicaoFallback: fallback}, relogio("18:00"),
	)
	return c
}

func ana() *Identidade { return &Identidade{AuthID: authAna, Email: "ana@posto.com", Nome: "Ana"} }

func pedido(dinheiro, pix, encerrante string) dto.FechamentoRequest {
	return dto.FechamentoRequest{
		Data:          "2026-03-10",
		TurnoID:       2,
		Encerrante:    dec(encerrante),
		ValorDinheiro: dec(dinheiro),
		ValorPix:      dec(pix),
	}
}

func TestSubmeter_Sucesso(t *testing.T) {
	c := novoCenario(t, true)

	res, err := c.svc.Submeter(context.Background(), ana(), postoTeste, pedido("600", "400", "1000"))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, MsgFechamentoOK, res.Message)
	require.NotNil(t, res.FechamentoID)

	env := c.fechamentos.envelopes[*res.FechamentoID]
	assert.Equal(t, model.StatusFechado, env.Status)
	assert.Equal(t, int64(10), *env.UsuarioID)
	assert.True(t, env.TotalRecebido.Equal(dec("1000")))
	assert.True(t, env.TotalVendas.Equal(dec("1000")))
	assert.True(t, env.Diferenca.IsZero())

	linhas := c.fechamentos.linhasDe(env.ID)
	require.Len(t, linhas, 1)
	assert.True(t, linhas[0].ValorConferido.Equal(dec("1000")))
	assert.True(t, linhas[0].DiferencaCalculada.IsZero())
	assert.Equal(t, []string{EventoFechamentoFrentista}, c.notificador.eventos)
}

func TestSubmeter_Idempotente(t *testing.T) {
	c := novoCenario(t, true)
	ctx := context.Background()

	res, err := c.svc.Submeter(ctx, ana(), postoTeste, pedido("600", "400", "1000"))
	require.NoError(t, err)
	antes := *c.fechamentos.envelopes[*res.FechamentoID]

	_, err = c.svc.Submeter(ctx, ana(), postoTeste, pedido("600", "400", "1000"))
	assert.ErrorIs(t, err, ErrFechamentoDuplicado)

	depois := c.fechamentos.envelopes[*res.FechamentoID]
	assert.True(t, antes.TotalRecebido.Equal(depois.TotalRecebido))
	assert.True(t, antes.TotalVendas.Equal(depois.TotalVendas))
	assert.True(t, antes.Diferenca.Equal(depois.Diferenca))
	assert.Len(t, c.fechamentos.linhas, 1)
}

func TestSubmeter_DesfazerReenviar(t *testing.T) {
	c := novoCenario(t, true)
	ctx := context.Background()

	_, err := c.svc.Submeter(ctx, ana(), postoTeste, pedido("600", "400", "1000"))
	require.NoError(t, err)

	res, err := c.svc.Desfazer(ctx, postoTeste, dto.DesfazerFechamentoRequest{FrentistaID: 1, Data: "2026-03-10", TurnoID: 2})
	require.NoError(t, err)
	assert.Equal(t, MsgDesfeitoOK, res.Message)

	_, err = c.svc.Submeter(ctx, ana(), postoTeste, pedido("500", "500", "1000"))
	require.NoError(t, err)
	assert.Len(t, c.fechamentos.linhas, 1)
}

func TestSubmeter_AgregaTodasAsLinhas(t *testing.T) {
	for _, ordem := range [][]int64{{1, 2}, {2, 1}} {
		c := novoCenario(t, true)
		ctx := context.Background()
		pedidos := map[int64]dto.FechamentoRequest{
			1: pedido("300", "200", "500"),
			2: pedido("150", "100", "300"),
		}
		var envID int64
		for _, fid := range ordem {
			req := pedidos[fid]
			req.FrentistaID = ptr(fid)
			res, err := c.svc.Submeter(ctx, nil, postoTeste, req)
			require.NoError(t, err)
			envID = *res.FechamentoID
		}
		require.Len(t, c.fechamentos.envelopes, 1)
		env := c.fechamentos.envelopes[envID]
		assert.True(t, env.TotalRecebido.Equal(dec("750")), "ordem %v: %s", ordem, env.TotalRecebido)
	}
}

func TestSubmeter_TotalVendasManual(t *testing.T) {
	c := novoCenario(t, true)
	req := pedido("600", "400", "1000")
	req.TotalVendas = ptr(dec("1200"))

	res, err := c.svc.Submeter(context.Background(), ana(), postoTeste, req)
	require.NoError(t, err)
	env := c.fechamentos.envelopes[*res.FechamentoID]
	assert.True(t, env.TotalVendas.Equal(dec("1200")))
	assert.True(t, env.Diferenca.Equal(dec("-200")))
}

func TestSubmeter_ClienteBloqueadoSemEscrita(t *testing.T) {
	c := novoCenario(t, true)
	req := pedido("600", "300", "1000")
	req.Notas = []dto.NotaPrazoItem{
		{ClienteID: 100, Valor: dec("50")},
		{ClienteID: 101, Valor: dec("50")},
	}

	_, err := c.svc.Submeter(context.Background(), ana(), postoTeste, req)
	assert.ErrorIs(t, err, ErrClienteBloqueado)
	assert.Empty(t, c.fechamentos.envelopes)
	assert.Empty(t, c.fechamentos.linhas)
	assert.Empty(t, c.notas.itens)
}

func TestSubmeter_Validacoes(t *testing.T) {
	cases := []struct {
		nome string
		req  dto.FechamentoRequest
		want error
	}{
		{"encerrante zerado", pedido("100", "0", "0"), ErrEncerranteZerado},
		{"total zerado", pedido("0", "0", "100"), ErrTotalZerado},
		{"data inválida", func() dto.FechamentoRequest { r := pedido("1", "0", "1"); r.Data = "10/03/2026"; return r }(), ErrDataInvalida},
		{"nota zerada", func() dto.FechamentoRequest {
			r := pedido("1", "0", "1")
			r.Notas = []dto.NotaPrazoItem{{ClienteID: 100, Valor: decimal.Zero}}
			return r
		}(), ErrValorNotaInvalido},
		{"cliente inexistente", func() dto.FechamentoRequest {
			r := pedido("1", "0", "1")
			r.Notas = []dto.NotaPrazoItem{{ClienteID: 999, Valor: dec("1")}}
			return r
		}(), ErrClienteInexistente},
	}
	for _, tc := range cases {
		t.Run(tc.nome, func(t *testing.T) {
			c := novoCenario(t, true)
			_, err := c.svc.Submeter(context.Background(), ana(), postoTeste, tc.req)
			assert.ErrorIs(t, err, tc.want)
			assert.Empty(t, c.fechamentos.envelopes)
		})
	}
}

func TestSubmeter_ResolucaoDoFrentista(t *testing.T) {
	c := novoCenario(t, true)
	ctx := context.Background()

	req := pedido("10", "0", "10")
	req.FrentistaID = ptr(int64(77))
	_, err := c.svc.Submeter(ctx, ana(), postoTeste, req)
	assert.ErrorIs(t, err, ErrFrentistaNaoEncontrado)

	_, err = c.svc.Submeter(ctx, nil, postoTeste, pedido("10", "0", "10"))
	assert.ErrorIs(t, err, ErrFrentistaNaoIdentificado)

	semFrentista := &Identidade{AuthID: uuid.New(), Email: "novo@posto.com"}
	_, err = c.svc.Submeter(ctx, semFrentista, postoTeste, pedido("10", "0", "10"))
	assert.ErrorIs(t, err, ErrFrentistaNaoIdentificado)
}

func TestSubmeter_FrentistaDeOutroPostoOuInativo(t *testing.T) {
	authOutro := uuid.New()
	cases := []struct {
		nome      string
		frentista model.Frentista
		id        *Identidade
		explicito bool
		want      error
	}{
		{"outro posto", model.Frentista{ID: 7, Nome: "Caio", Ativo: true, PostoID: 99}, nil, true, ErrFrentistaNaoEncontrado},
		{"desativado", model.Frentista{ID: 8, Nome: "Duda", Ativo: false, PostoID: postoTeste}, nil, true, ErrFrentistaNaoEncontrado},
		{"próprio registro em outro posto",
			model.Frentista{ID: 9, Nome: "Eva", Ativo: true, PostoID: 99, UserID: &authOutro},
			&Identidade{AuthID: authOutro, Email: "eva@posto.com"}, false, ErrFrentistaNaoIdentificado},
		{"próprio registro desativado",
			model.Frentista{ID: 9, Nome: "Eva", Ativo: false, PostoID: postoTeste, UserID: &authOutro},
			&Identidade{AuthID: authOutro, Email: "eva@posto.com"}, false, ErrFrentistaNaoIdentificado},
	}
	for _, tc := range cases {
		t.Run(tc.nome, func(t *testing.T) {
			c := novoCenario(t, true)
			f := tc.frentista
			c.frentistas.itens[f.ID] = &f
			req := pedido("10", "0", "10")
			if tc.explicito {
				req.FrentistaID = ptr(f.ID)
			}

			_, err := c.svc.Submeter(context.Background(), tc.id, postoTeste, req)
			assert.ErrorIs(t, err, tc.want)
			assert.Empty(t, c.fechamentos.envelopes)
			assert.Empty(t, c.fechamentos.linhas)
		})
	}
}

func TestSubmeter_TurnoDoPosto(t *testing.T) {
	for nome, turnoID := range map[string]int64{"inexistente": 404, "outro posto": 5} {
		t.Run(nome, func(t *testing.T) {
			c := novoCenario(t, true)
			req := pedido("10", "0", "10")
			req.TurnoID = turnoID

			_, err := c.svc.Submeter(context.Background(), ana(), postoTeste, req)
			assert.ErrorIs(t, err, ErrTurnoNaoEncontrado)
			assert.Empty(t, c.fechamentos.envelopes)
		})
	}

	c := novoCenario(t, true)
	c.turnos.err = errors.New("conexão perdida")
	_, err := c.svc.Submeter(context.Background(), ana(), postoTeste, pedido("10", "0", "10"))
	assert.ErrorIs(t, err, ErrFalhaEnvio)
}

func TestSubmeter_AtribuicaoDeContingencia(t *testing.T) {
	c := novoCenario(t, true)
	req := pedido("10", "0", "10")
	req.FrentistaID = ptr(int64(2))

	res, err := c.svc.Submeter(context.Background(), nil, postoTeste, req)
	require.NoError(t, err)
	env := c.fechamentos.envelopes[*res.FechamentoID]
	require.NotNil(t, env.UsuarioID)
	assert.Equal(t, int64(20), *env.UsuarioID, "primeiro admin")
}

func TestSubmeter_AtribuicaoNulaSemPerfis(t *testing.T) {
	c := novoCenario(t, true)
	c.usuarios.itens = nil
	req := pedido("10", "0", "10")
	req.FrentistaID = ptr(int64(2))

	res, err := c.svc.Submeter(context.Background(), nil, postoTeste, req)
	require.NoError(t, err)
	assert.Nil(t, c.fechamentos.envelopes[*res.FechamentoID].UsuarioID)
}

func TestSubmeter_AtribuicaoDesligada(t *testing.T) {
	c := novoCenario(t, false)
	req := pedido("10", "0", "10")
	req.FrentistaID = ptr(int64(2))

	_, err := c.svc.Submeter(context.Background(), nil, postoTeste, req)
	assert.ErrorIs(t, err, ErrNaoAutenticado)
	assert.Empty(t, c.fechamentos.envelopes)

	_, err = c.svc.Submeter(context.Background(), ana(), postoTeste, pedido("10", "0", "10"))
	assert.NoError(t, err)
}

func TestSubmeter_NotasGravadas(t *testing.T) {
	c := novoCenario(t, true)
	req := pedido("600", "300", "1000")
	req.Notas = []dto.NotaPrazoItem{{ClienteID: 100, Valor: dec("100")}}

	res, err := c.svc.Submeter(context.Background(), ana(), postoTeste, req)
	require.NoError(t, err)
	require.Len(t, c.notas.itens, 1)
	n := c.notas.itens[0]
	assert.Equal(t, *res.FechamentoID, *n.FechamentoID)
	assert.Equal(t, int64(1), n.FrentistaID)
	assert.False(t, n.CriadoEm.IsZero())

	linha := c.fechamentos.linhasDe(*res.FechamentoID)[0]
	assert.True(t, linha.ValorNota.Equal(dec("100")), "valor_nota derivado das notas")
	assert.True(t, linha.DiferencaCalculada.IsZero())
}

func TestSubmeter_FalhaNasNotasNaoDesfazFechamento(t *testing.T) {
	c := novoCenario(t, true)
	c.notas.err = errors.New("conexão perdida")
	req := pedido("600", "300", "1000")
	req.Notas = []dto.NotaPrazoItem{{ClienteID: 100, Valor: dec("100")}}

	res, err := c.svc.Submeter(context.Background(), ana(), postoTeste, req)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Len(t, c.fechamentos.linhas, 1)
	require.Len(t, c.fila.lotes, 1)
	assert.Len(t, c.fila.lotes[0], 1)
}

func TestSubmeter_FalhaRemotaEmbrulhada(t *testing.T) {
	c := novoCenario(t, true)
	c.fechamentos.createErr = errors.New("timeout")

	_, err := c.svc.Submeter(context.Background(), ana(), postoTeste, pedido("10", "0", "10"))
	assert.ErrorIs(t, err, ErrFalhaEnvio)
	assert.Contains(t, err.Error(), "timeout")
}

func TestDesfazer_DuasVezes(t *testing.T) {
	c := novoCenario(t, true)
	ctx := context.Background()
	req := pedido("600", "300", "1000")
	req.Notas = []dto.NotaPrazoItem{{ClienteID: 100, Valor: dec("100")}}
	_, err := c.svc.Submeter(ctx, ana(), postoTeste, req)
	require.NoError(t, err)

	desfazer := dto.DesfazerFechamentoRequest{FrentistaID: 1, Data: "2026-03-10", TurnoID: 2}
	_, err = c.svc.Desfazer(ctx, postoTeste, desfazer)
	require.NoError(t, err)
	assert.Empty(t, c.notas.itens, "notas removidas junto com a linha")

	_, err = c.svc.Desfazer(ctx, postoTeste, desfazer)
	assert.ErrorIs(t, err, ErrNadaParaDesfazer)
}

func TestDesfazer_SemEnvelope(t *testing.T) {
	c := novoCenario(t, true)
	_, err := c.svc.Desfazer(context.Background(), postoTeste, dto.DesfazerFechamentoRequest{FrentistaID: 1, Data: "2026-03-10", TurnoID: 2})
	assert.ErrorIs(t, err, ErrNadaParaDesfazer)
}

func TestDesfazer_RecalculaComLinhasRestantes(t *testing.T) {
	c := novoCenario(t, true)
	ctx := context.Background()
	for fid, r := range map[int64]dto.FechamentoRequest{1: pedido("300", "200", "500"), 2: pedido("100", "0", "300")} {
		r.FrentistaID = ptr(fid)
		_, err := c.svc.Submeter(ctx, nil, postoTeste, r)
		require.NoError(t, err)
	}

	res, err := c.svc.Desfazer(ctx, postoTeste, dto.DesfazerFechamentoRequest{FrentistaID: 1, Data: "2026-03-10", TurnoID: 2})
	require.NoError(t, err)
	env := c.fechamentos.envelopes[*res.FechamentoID]
	assert.True(t, env.TotalRecebido.Equal(dec("100")))
	assert.Equal(t, model.StatusFechado, env.Status)
}

func TestFecharamEHistorico(t *testing.T) {
	c := novoCenario(t, true)
	ctx := context.Background()
	_, err := c.svc.Submeter(ctx, ana(), postoTeste, pedido("500", "400", "1000"))
	require.NoError(t, err)

	ids, err := c.svc.Fecharam(ctx, postoTeste, "2026-03-10", 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)

	vazio, err := c.svc.Fecharam(ctx, postoTeste, "2026-03-11", 2)
	require.NoError(t, err)
	assert.Empty(t, vazio)

	hist, err := c.svc.Historico(ctx, 1, postoTeste, 0)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, "2026-03-10", hist[0].Data)
	assert.True(t, hist[0].TotalInformado.Equal(dec("900")))
	assert.True(t, hist[0].Diferenca.Equal(dec("100")))
	assert.Equal(t, "divergente", hist[0].Status)
}

func TestHistorico_CartaoLegado(t *testing.T) {
	c := novoCenario(t, true)
	c.fechamentos.linhas[1] = &model.FechamentoFrentista{
		ID: 1, FrentistaID: 1, PostoID: postoTeste,
		ValorCartao: dec("300"), ValorDinheiro: dec("200"), Encerrante: dec("500"),
	}

	hist, err := c.svc.Historico(context.Background(), 1, postoTeste, 5)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.True(t, hist[0].TotalInformado.Equal(dec("500")))
	assert.Equal(t, "ok", hist[0].Status)
	assert.Equal(t, "N/A", hist[0].Turno)
}

func TestRelatorio(t *testing.T) {
	c := novoCenario(t, true)
	_, _, err := c.svc.Relatorio(context.Background(), 42)
	assert.ErrorIs(t, err, ErrFechamentoInexistente)
}
