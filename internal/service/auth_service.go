package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"postocaixa/internal/config"
	"postocaixa/internal/dto"
	"postocaixa/internal/model"
	"postocaixa/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrCredenciaisInvalidas = errors.New("credenciais inválidas")
	ErrEmailJaCadastrado    = errors.New("e-mail já cadastrado")
)

type AuthService interface {
	Signup(ctx context.Context, req dto.SignupRequest) (*dto.UsuarioResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
}

type authService struct {
	repo repository.UsuarioRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.UsuarioRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg}
}

// Signup creates the profile only. The attendant record is created on the
// first session bootstrap from the metadata stored here.
func (s *authService) Signup(ctx context.Context, req dto.SignupRequest) (*dto.UsuarioResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Senha), 12)
	if err != nil {
		return nil, err
	}
	user := &model.Usuario{
		AuthID:    uuid.New(),
		Nome:      strings.TrimSpace(req.Nome),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		SenhaHash: string(hash),
		Role:      model.RoleFrentista,
		Cpf:       req.Cpf,
		Telefone:  req.Telefone,
		PostoID:   req.PostoID,
		Ativo:     true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicado) {
			return nil, ErrEmailJaCadastrado
		}
		return nil, err
	}
	resp := usuarioResponse(user)
	return &resp, nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil || user == nil || !user.Ativo {
		return nil, ErrCredenciaisInvalidas
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.SenhaHash), []byte(req.Senha)); err != nil {
		return nil, ErrCredenciaisInvalidas
	}
	return s.tokens(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("refresh token inválido ou expirado")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("claims inválidos")
	}
	userIDStr, _ := claims["user_id"].(string)
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, errors.New("token mal formado")
	}

	user, err := s.repo.FindByAuthID(ctx, uid)
	if err != nil || user == nil || !user.Ativo {
		return nil, errors.New("usuário não encontrado ou inativo")
	}
	return s.tokens(user)
}

func (s *authService) tokens(user *model.Usuario) (*dto.LoginResponse, error) {
	access, err := s.generateToken(user, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refresh, err := s.generateToken(user, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         usuarioResponse(user),
	}, nil
}

// generateToken embeds the signup metadata so the bootstrap can rebuild a
// missing attendant record without another profile lookup.
func (s *authService) generateToken(user *model.Usuario, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.AuthID.String(),
		"email":    user.Email,
		"rol":      user.Role,
		"nome":     user.Nome,
		"cpf":      user.Cpf,
		"telefone": user.Telefone,
		"posto_id": user.PostoID,
		"exp":      time.Now().Add(duration).Unix(),
		"iat":      time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func usuarioResponse(u *model.Usuario) dto.UsuarioResponse {
	return dto.UsuarioResponse{
		ID:      u.ID,
		AuthID:  u.AuthID.String(),
		Nome:    u.Nome,
		Email:   u.Email,
		Role:    u.Role,
		PostoID: u.PostoID,
	}
}
