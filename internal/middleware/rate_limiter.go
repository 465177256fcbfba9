package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"postocaixa/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Contador increments a fixed-window counter and returns the new count.
// Windows are shared across server instances when backed by Redis.
type Contador interface {
	Incrementar(ctx context.Context, chave string, janela time.Duration) (int64, error)
}

type redisContador struct{ rdb *redis.Client }

func NewRedisContador(rdb *redis.Client) Contador { return &redisContador{rdb: rdb} }

func (r *redisContador) Incrementar(ctx context.Context, chave string, janela time.Duration) (int64, error) {
	pipe := r.rdb.TxPipeline()
	incr := pipe.Incr(ctx, chave)
	pipe.ExpireNX(ctx, chave, janela)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// ── Login rate limiter ────────────────────────────────────────────────────────

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter(cont Contador) gin.HandlerFunc {
	return limitar(cont, "login", 20, time.Minute, "Muitas tentativas de login. Tente novamente em 1 minuto.")
}

// ── General API rate limiter ──────────────────────────────────────────────────

// RateLimiter limits requests per IP per window.
func RateLimiter(cont Contador, limit int, window time.Duration) gin.HandlerFunc {
	return limitar(cont, "api", limit, window, "Muitas requisições. Tente novamente em instantes.")
}

// limitar fails open: when the counter store is unreachable the request
// goes through and the error is logged.
func limitar(cont Contador, escopo string, limit int, window time.Duration, msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		inicio := time.Now().Truncate(window)
		chave := fmt.Sprintf("ratelimit:%s:%s:%d", escopo, c.ClientIP(), inicio.Unix())

		n, err := cont.Incrementar(c.Request.Context(), chave, window)
		if err != nil {
			log.Warn().Err(err).Str("escopo", escopo).Msg("rate limiter indisponível")
			c.Next()
			return
		}
		if n > int64(limit) {
			retry := int(time.Until(inicio.Add(window)).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}
