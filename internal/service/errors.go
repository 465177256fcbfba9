package service

import "errors"

// Closing and bootstrap errors. Messages are shown to the attendant as-is.
var (
	ErrNaoAutenticado           = errors.New("Usuário não autenticado.")
	ErrFrentistaNaoIdentificado = errors.New("Frentista não identificado. Por favor selecione um frentista no topo da tela.")
	ErrFrentistaNaoEncontrado   = errors.New("Frentista selecionado não encontrado.")
	ErrFechamentoDuplicado      = errors.New("Você já realizou o fechamento para este turno hoje.")
	ErrNadaParaDesfazer         = errors.New("Nenhum fechamento encontrado para desfazer.")
	ErrFalhaEnvio               = errors.New("Erro ao enviar fechamento")

	// Validation, checked before anything is written.
	ErrEncerranteZerado   = errors.New("Informe o valor do encerrante.")
	ErrTotalZerado        = errors.New("Informe ao menos um valor recebido.")
	ErrClienteBloqueado   = errors.New("Cliente bloqueado não pode receber notas a prazo.")
	ErrClienteInexistente = errors.New("Cliente não encontrado.")
	ErrValorNotaInvalido  = errors.New("O valor da nota deve ser maior que zero.")
	ErrDataInvalida       = errors.New("Data inválida.")

	ErrTurnoNaoEncontrado    = errors.New("Turno não encontrado.")
	ErrCaixaJaAberto         = errors.New("O caixa já foi aberto hoje.")
	ErrProdutoNaoEncontrado  = errors.New("Produto não encontrado.")
	ErrEstoqueInsuficiente   = errors.New("Estoque insuficiente.")
	ErrFechamentoInexistente = errors.New("Fechamento não encontrado.")
)

