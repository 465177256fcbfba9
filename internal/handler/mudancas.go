package handler

import (
	"context"
	"io"
	"net/http"
	"time"

	"postocaixa/internal/apierror"
	"postocaixa/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Assinante delivers a station's change events until ctx ends.
type Assinante interface {
	Assinar(ctx context.Context, postoID int64) (<-chan realtime.Evento, error)
}

type MudancasHandler struct {
	hub       Assinante
	keepalive time.Duration
}

func NewMudancasHandler(hub Assinante, keepalive time.Duration) *MudancasHandler {
	if keepalive <= 0 {
		keepalive = 25 * time.Second
	}
	return &MudancasHandler{hub: hub, keepalive: keepalive}
}

// Stream godoc
// @Summary Eventos de mudança do posto (Server-Sent Events)
// @Description Cada evento só avisa que turnos ou fechamentos mudaram; o app recarrega o que mostra.
// @Tags mudancas
// @Produce text/event-stream
// @Param X-Posto-ID header int true "Posto selecionado"
// @Success 200 {object} realtime.Evento
// @Router /v1/mudancas [get]
func (h *MudancasHandler) Stream(c *gin.Context) {
	postoID, ok := postoDe(c)
	if !ok {
		c.JSON(http.StatusBadRequest, apierror.New(msgSemPosto))
		return
	}
	ctx := c.Request.Context()
	eventos, err := h.hub.Assinar(ctx, postoID)
	if err != nil {
		log.Error().Err(err).Int64("posto_id", postoID).Msg("realtime subscribe failed")
		c.JSON(http.StatusServiceUnavailable, apierror.New("Atualizações em tempo real indisponíveis"))
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-eventos:
			if !ok {
				return false
			}
			c.SSEvent(ev.Tipo, ev)
			return true
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"em": time.Now().UTC()})
			return true
		}
	})
}
