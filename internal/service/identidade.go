package service

import (
	"strings"

	"github.com/google/uuid"
)

// Identidade is the signed-in caller as carried by the access token. A nil
// *Identidade is an anonymous (shared-device) caller.
type Identidade struct {
	AuthID   uuid.UUID
	Email    string
	Nome     string
	Cpf      *string
	Telefone *string
	PostoID  *int64
}

// nomeExibicao is the signup name, else the local part of the e-mail.
func (i *Identidade) nomeExibicao() string {
	if n := strings.TrimSpace(i.Nome); n != "" {
		return n
	}
	local, _, _ := strings.Cut(i.Email, "@")
	return local
}
