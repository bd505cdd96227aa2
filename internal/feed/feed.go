// Package feed publishes roster snapshots to RabbitMQ so other services can
// follow the trip's member list without reading the document store.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/pkordes/companion/internal/domain"
	"github.com/pkordes/companion/internal/logging"
)

const publishTimeout = 5 * time.Second

// RosterMessage is the JSON body of every published snapshot.
type RosterMessage struct {
	Members   []domain.Member `json:"members"`
	Timestamp time.Time       `json:"timestamp"`
}

// ToJSON converts the message to JSON bytes.
func (m RosterMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RosterMessageFromJSON decodes a published message.
func RosterMessageFromJSON(data []byte) (RosterMessage, error) {
	var msg RosterMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return RosterMessage{}, err
	}
	return msg, nil
}

// channel is the part of *amqp091.Channel the publisher uses.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher sends roster snapshots to a durable fanout exchange.
// It satisfies shell.RosterPublisher.
type Publisher struct {
	conn     io.Closer
	ch       channel
	exchange string
	log      *slog.Logger

	mu sync.Mutex
}

// Dial connects to url and declares exchange.
func Dial(url, exchange string, log *slog.Logger) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("feed.Dial: dial AMQP: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("feed.Dial: open channel: %w", err)
	}
	p, err := newPublisher(conn, ch, exchange, log)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("feed.Dial: %w", err)
	}
	return p, nil
}

func newPublisher(conn io.Closer, ch channel, exchange string, log *slog.Logger) (*Publisher, error) {
	err := ch.ExchangeDeclare(
		exchange, // name
		"fanout", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &Publisher{conn: conn, ch: ch, exchange: exchange, log: logging.For(log, logging.ComponentFeed)}, nil
}

// PublishRoster publishes snap as one persistent JSON message stamped with
// the time the roster was applied.
func (p *Publisher) PublishRoster(ctx context.Context, snap domain.RosterSnapshot) error {
	msg := RosterMessage{Members: snap.Members, Timestamp: snap.At.UTC()}
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("feed.Publisher.PublishRoster: marshal: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.PublishWithContext(
		ctx,
		p.exchange, // exchange
		"",         // routing key, ignored by fanout
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    msg.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("feed.Publisher.PublishRoster: %w", err)
	}

	p.log.DebugContext(ctx, "published roster", "members", len(snap.Members), "exchange", p.exchange)
	return nil
}

// Close closes the channel and the connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
