// Package realtime carries station change notifications over Redis pub/sub.
// Events are cache-invalidation hints: subscribers reload what they show and
// never treat an event as data.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Evento says that a collection changed at a station.
type Evento struct {
	Tipo    string    `json:"tipo"`
	PostoID int64     `json:"posto_id"`
	Em      time.Time `json:"em"`
}

// Canal is the pub/sub channel for a station.
func Canal(postoID int64) string {
	return fmt.Sprintf("posto:%d:mudancas", postoID)
}

type Hub struct {
	rdb *redis.Client
}

func NewHub(rdb *redis.Client) *Hub { return &Hub{rdb: rdb} }

// Publicar sends an event to every subscriber of the station.
func (h *Hub) Publicar(ctx context.Context, postoID int64, tipo string) error {
	payload, err := json.Marshal(Evento{Tipo: tipo, PostoID: postoID, Em: time.Now().UTC()})
	if err != nil {
		return err
	}
	return h.rdb.Publish(ctx, Canal(postoID), payload).Err()
}

// Assinar subscribes to the station's channel. The returned channel is
// closed when ctx ends or the subscription breaks.
func (h *Hub) Assinar(ctx context.Context, postoID int64) (<-chan Evento, error) {
	sub := h.rdb.Subscribe(ctx, Canal(postoID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	out := make(chan Evento, 16)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				ev, err := Decodificar(msg.Payload)
				if err != nil {
					log.Warn().Err(err).Str("canal", msg.Channel).Msg("realtime: evento inválido")
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func Decodificar(payload string) (Evento, error) {
	var ev Evento
	err := json.Unmarshal([]byte(payload), &ev)
	return ev, err
}
