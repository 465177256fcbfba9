package dto

// Bootstrap statuses returned by POST /v1/sessao/bootstrap.
const (
	SessaoSemSessao      = "sem_sessao"
	SessaoAdmin          = "admin"
	SessaoPronto         = "pronto"
	SessaoBloqueado      = "bloqueado"
	SessaoAberturaManual = "abertura_manual"
	SessaoVerificado     = "verificado"
)

type BootstrapResponse struct {
	Status    string             `json:"status"`
	Frentista *FrentistaResponse `json:"frentista,omitempty"`
	Turno     *TurnoResponse     `json:"turno,omitempty"`
	Mensagem  string             `json:"mensagem,omitempty"`
}

type AbrirCaixaRequest struct {
	TurnoID int64 `json:"turno_id" validate:"required,min=1"`
}

type AberturaCaixaResponse struct {
	ID          int64  `json:"id"`
	FrentistaID int64  `json:"frentista_id"`
	TurnoID     int64  `json:"turno_id"`
	Data        string `json:"data"`
	AbertaEm    string `json:"aberta_em"`
}
