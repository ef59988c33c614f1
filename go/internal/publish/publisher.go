package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

// LogPublisher only logs events; used when no NATS server is configured
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (p *LogPublisher) Publish(ctx context.Context, event Event) error {
	log.Debug().
		Str("event_id", event.ID).
		Str("event_type", event.EventType).
		Int("size", len(event.Payload)).
		Msg("publishing event")
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}

type JetStreamConfig struct {
	URL             string
	StreamName      string
	SubjectPrefix   string
	MaxReconnects   int
	ReconnectWait   time.Duration
	MaxAge          time.Duration // How long to keep messages
	DuplicateWindow time.Duration // Window for duplicate detection
}

func DefaultJetStreamConfig() JetStreamConfig {
	return JetStreamConfig{
		URL:             nats.DefaultURL,
		StreamName:      "GAME_EVENTS",
		SubjectPrefix:   "game.events",
		MaxReconnects:   -1, // Infinite
		ReconnectWait:   2 * time.Second,
		MaxAge:          24 * time.Hour,
		DuplicateWindow: 2 * time.Minute,
	}
}

type JetStreamPublisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	config JetStreamConfig
}

func NewJetStreamPublisher(cfg JetStreamConfig) (*JetStreamPublisher, error) {
	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	p := &JetStreamPublisher{nc: nc, js: js, config: cfg}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.ensureStream(ctx); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream: %w", err)
	}

	return p, nil
}

func (p *JetStreamPublisher) ensureStream(ctx context.Context) error {
	sc := jetstream.StreamConfig{
		Name:        p.config.StreamName,
		Description: "Game session notifications",
		Subjects:    []string{fmt.Sprintf("%s.>", p.config.SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      p.config.MaxAge,
		Storage:     jetstream.MemoryStorage,
		Replicas:    1,
		Duplicates:  p.config.DuplicateWindow,
	}

	if _, err := p.js.CreateOrUpdateStream(ctx, sc); err != nil {
		return fmt.Errorf("create or update stream: %w", err)
	}
	log.Info().
		Str("stream", p.config.StreamName).
		Str("subjects", sc.Subjects[0]).
		Msg("JetStream stream ready")
	return nil
}

// Subject returns the subject an event type is published on
func (p *JetStreamPublisher) Subject(eventType string) string {
	return subjectFor(p.config.SubjectPrefix, eventType)
}

func subjectFor(prefix, eventType string) string {
	return fmt.Sprintf("%s.%s", prefix, eventType)
}

func (p *JetStreamPublisher) Publish(ctx context.Context, event Event) error {
	subject := p.Subject(event.EventType)

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ack, err := p.js.PublishMsg(ctx, &nats.Msg{
		Subject: subject,
		Data:    data,
		Header: nats.Header{
			"Event-Type": []string{event.EventType},
			"Event-ID":   []string{event.ID},
		},
	},
		jetstream.WithMsgID(event.ID),
		jetstream.WithExpectStream(p.config.StreamName),
	)
	if err != nil {
		return fmt.Errorf("publish to JetStream: %w", err)
	}

	log.Debug().
		Str("subject", subject).
		Str("event_id", event.ID).
		Uint64("sequence", ack.Sequence).
		Str("stream", ack.Stream).
		Msg("published to JetStream")

	return nil
}

// Connected reports the state of the NATS connection
func (p *JetStreamPublisher) Connected() bool {
	return p.nc != nil && p.nc.IsConnected()
}

func (p *JetStreamPublisher) Close() error {
	if p.nc != nil {
		p.nc.Close()
	}
	return nil
}
