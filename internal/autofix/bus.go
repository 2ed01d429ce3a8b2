package autofix

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xela07ax/dentops-gate-prototype/internal/infra"
)

// Publisher — то, что автофиксам нужно от шины событий UI.
type Publisher interface {
	Publish(ctx context.Context, event string, payload EventPayload) error
}

// EventPayload — данные события ремедиации для UI-слушателей.
type EventPayload struct {
	ClinicID  string `json:"clinic_id"`
	ServiceID string `json:"service_id,omitempty"`
}

// RedisBus транслирует события ремедиации через Redis Pub/Sub.
// Вместо глобального диспатча в рантайме UI — явный канал: фронтовые
// инстансы подписываются на namespaced-каналы и поднимают мастера.
type RedisBus struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewRedisBus(rdb *redis.Client, logger *zap.Logger) *RedisBus {
	return &RedisBus{rdb: rdb, logger: logger.Named("ui-bus")}
}

func (b *RedisBus) Publish(ctx context.Context, event string, payload EventPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, infra.RemediationChannel(event), data).Err()
}

// PublishDecision транслирует итог проверки в канал живых дашбордов.
func (b *RedisBus) PublishDecision(ctx context.Context, decision any) error {
	data, err := json.Marshal(decision)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, infra.RedisChanGateDecisions, data).Err()
}
