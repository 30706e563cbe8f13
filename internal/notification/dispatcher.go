package notification

import (
	"context"
	"encoding/json"
	"innovation-portal/internal/domain"
	"innovation-portal/internal/worker"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

// Dispatcher delivers events off the request path.
type Dispatcher struct {
	pool      *worker.WorkerPool
	repo      Repository
	publisher *Publisher
	webhook   *WebhookClient
	now       func() time.Time
}

func NewDispatcher(pool *worker.WorkerPool, repo Repository, publisher *Publisher, webhook *WebhookClient) *Dispatcher {
	return &Dispatcher{
		pool:      pool,
		repo:      repo,
		publisher: publisher,
		webhook:   webhook,
		now:       time.Now,
	}
}

// Notify stamps the event and queues its delivery.
func (d *Dispatcher) Notify(e Event) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = d.now()
	}

	if !d.pool.Submit("notify:"+string(e.Kind), func(ctx context.Context) error {
		return d.Deliver(ctx, e)
	}) {
		log.Warn().Str("event_id", e.ID).Str("kind", string(e.Kind)).Msg("notification dropped")
	}
}

// Deliver stores one row per recipient, then publishes them and calls the
// webhook. Publish and webhook failures are logged, not returned: the rows
// are the source of truth.
func (d *Dispatcher) Deliver(ctx context.Context, e Event) error {
	recipients, err := d.recipients(ctx, e)
	if err != nil {
		return err
	}

	var payload datatypes.JSON
	if len(e.Payload) > 0 {
		raw, err := json.Marshal(e.Payload)
		if err != nil {
			return err
		}
		payload = datatypes.JSON(raw)
	}

	rows := make([]domain.Notification, 0, len(recipients))
	for _, userID := range recipients {
		rows = append(rows, domain.Notification{
			UserID:    userID,
			EventID:   e.ID,
			Kind:      string(e.Kind),
			Title:     e.Title,
			Body:      e.Body,
			Payload:   payload,
			CreatedAt: e.OccurredAt,
		})
	}
	if err := d.repo.CreateBatch(ctx, rows); err != nil {
		return err
	}

	for i := range rows {
		if err := d.publisher.Publish(ctx, &rows[i]); err != nil {
			log.Warn().Err(err).Uint64("user_id", rows[i].UserID).Msg("notification publish failed")
		}
	}

	if err := d.webhook.Post(ctx, e); err != nil {
		log.Warn().Err(err).Str("event_id", e.ID).Msg("webhook delivery failed")
	}

	log.Debug().Str("event_id", e.ID).Str("kind", string(e.Kind)).Int("recipients", len(rows)).Msg("notification delivered")
	return nil
}

func (d *Dispatcher) recipients(ctx context.Context, e Event) ([]uint64, error) {
	seen := make(map[uint64]bool)
	out := make([]uint64, 0, len(e.Recipients))
	for _, id := range e.Recipients {
		if id != 0 && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}

	if len(e.RecipientRoles) == 0 {
		return out, nil
	}
	roles := make([]string, 0, len(e.RecipientRoles))
	for _, r := range e.RecipientRoles {
		roles = append(roles, string(r))
	}
	holders, err := d.repo.UserIDsWithRoles(ctx, roles)
	if err != nil {
		return nil, err
	}
	for _, id := range holders {
		if id != e.ActorID && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out, nil
}
