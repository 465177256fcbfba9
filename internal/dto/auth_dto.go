package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SignupRequest struct {
	Nome     string  `json:"nome"     validate:"required,min=2,max=100"`
	Email    string  `json:"email"    validate:"required,email"`
	Senha    string  `json:"senha"    validate:"required,min=8"`
	Cpf      *string `json:"cpf"      validate:"omitempty,min=11,max=14"`
	Telefone *string `json:"telefone" validate:"omitempty,max=20"`
	PostoID  *int64  `json:"posto_id" validate:"omitempty,min=1"`
}

type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
	Senha string `json:"senha" validate:"required,min=4"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UsuarioResponse struct {
	ID      int64  `json:"id"`
	AuthID  string `json:"auth_id"`
	Nome    string `json:"nome"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	PostoID *int64 `json:"posto_id"`
}

type LoginResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int             `json:"expires_in"` // seconds
	User         UsuarioResponse `json:"user"`
}
