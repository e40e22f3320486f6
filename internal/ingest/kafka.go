// Package ingest bridges mutation events published by the REST tier
// into the gateway's realtime fanout. Delivery is a notification hint:
// the data itself is already persisted, and clients refetch on demand.
package ingest

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/taskhive/realtime-gateway/internal/app"
	"github.com/taskhive/realtime-gateway/internal/config"
	"github.com/taskhive/realtime-gateway/internal/domain"
)

// Event is the message shape the REST tier publishes after a successful
// mutation. Project-scoped events carry the project room key; user-
// scoped events carry the recipient list. Data is relayed verbatim.
type Event struct {
	Event   string          `json:"event"`
	Project string          `json:"project,omitempty"`
	Users   []string        `json:"users,omitempty"`
	Data    json.RawMessage `json:"data"`
}

// Route fans one ingested event out through the gateway.
func Route(gw *app.Gateway, ev Event) error {
	switch ev.Event {
	case domain.EvtTaskCreated, domain.EvtTaskUpdated, domain.EvtTaskDeleted, domain.EvtProjectUpdated:
		if ev.Project == "" {
			return errors.New("project event without project key")
		}
		gw.NotifyProject(ev.Project, ev.Event, ev.Data)
	case domain.EvtNewChatReceived, domain.EvtChatDeleted, domain.EvtNotificationReceived:
		if len(ev.Users) == 0 {
			return errors.New("user event without recipients")
		}
		users := make([]domain.UserID, 0, len(ev.Users))
		for _, u := range ev.Users {
			users = append(users, domain.UserID(u))
		}
		gw.NotifyUsers(users, ev.Event, ev.Data)
	default:
		return errors.New("unroutable event: " + ev.Event)
	}
	return nil
}

// Consumer reads the mutation topic and forwards each event to the
// gateway. One consumer group member per gateway process.
type Consumer struct {
	reader *kafka.Reader
	gw     *app.Gateway
}

func NewConsumer(cfg config.Kafka, gw *app.Gateway) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: cfg.Brokers,
			Topic:   cfg.Topic,
			GroupID: cfg.Group,
		}),
		gw: gw,
	}
}

// Run consumes until ctx is canceled. Malformed or unroutable messages
// are logged and skipped; the loop never dies on one bad message.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		var ev Event
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			log.Warn().Err(err).Str("module", "ingest").Msg("bad event message")
			continue
		}
		if err := Route(c.gw, ev); err != nil {
			log.Warn().Err(err).Str("module", "ingest").Str("event", ev.Event).Msg("event dropped")
			continue
		}
		log.Debug().Str("module", "ingest").Str("event", ev.Event).Msg("event routed")
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
