package middleware

import (
	"net/http"
	"strings"

	"postocaixa/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ClaimsKey = "claims"
)

// JWTClaims are the custom claims embedded in every access token. The signup
// metadata rides along so a missing attendant record can be rebuilt.
type JWTClaims struct {
	UserID   string  `json:"user_id"`
	Email    string  `json:"email"`
	Rol      string  `json:"rol"`
	Nome     string  `json:"nome"`
	Cpf      *string `json:"cpf"`
	Telefone *string `json:"telefone"`
	PostoID  *int64  `json:"posto_id"`
	jwt.RegisteredClaims
}

func parseToken(secret, header string) (*JWTClaims, bool) {
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return nil, false
	}
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(strings.TrimPrefix(header, "Bearer "), claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}
	return claims, true
}

// JWTAuth validates the Bearer token on every protected route.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Autenticação necessária"))
			return
		}
		claims, ok := parseToken(secret, header)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token inválido ou expirado"))
			return
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// OptionalJWTAuth sets claims when a valid token is present and lets
// anonymous shared-device requests through otherwise. A present but invalid
// token is still rejected.
func OptionalJWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		claims, ok := parseToken(secret, header)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token inválido ou expirado"))
			return
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireRole rejects requests whose JWT role is not in the allowed list.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil || !allowed[claims.Rol] {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Permissões insuficientes"))
			return
		}
		c.Next()
	}
}

// GetClaims returns the typed claims, or nil for anonymous requests.
func GetClaims(c *gin.Context) *JWTClaims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*JWTClaims)
	return claims
}
