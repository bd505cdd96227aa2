package feed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/companion/internal/domain"
)

// fakeChannel records what the publisher sends.
type fakeChannel struct {
	declared   []string
	kinds      []string
	declareErr error
	publishErr error
	published  []amqp091.Publishing
	exchanges  []string
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, _, _, _, _ bool, _ amqp091.Table) error {
	f.declared = append(f.declared, name)
	f.kinds = append(f.kinds, kind)
	return f.declareErr
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, _ string, _, _ bool, msg amqp091.Publishing) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("publish without deadline")
	}
	f.exchanges = append(f.exchanges, exchange)
	f.published = append(f.published, msg)
	return f.publishErr
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

type fakeConn struct{ closed bool }

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestNewPublisher_DeclaresFanoutExchange(t *testing.T) {
	ch := &fakeChannel{}

	_, err := newPublisher(&fakeConn{}, ch, "companion.roster", discard())

	require.NoError(t, err)
	assert.Equal(t, []string{"companion.roster"}, ch.declared)
	assert.Equal(t, []string{"fanout"}, ch.kinds)
}

func TestNewPublisher_DeclareFailure(t *testing.T) {
	ch := &fakeChannel{declareErr: errors.New("access refused")}

	_, err := newPublisher(&fakeConn{}, ch, "companion.roster", discard())

	assert.ErrorContains(t, err, "access refused")
}

func TestPublishRoster(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newPublisher(&fakeConn{}, ch, "companion.roster", discard())
	require.NoError(t, err)
	at := time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, p.PublishRoster(context.Background(), domain.RosterSnapshot{Members: domain.SeedMembers()[:2], At: at}))

	require.Len(t, ch.published, 1)
	pub := ch.published[0]
	assert.Equal(t, "companion.roster", ch.exchanges[0])
	assert.Equal(t, "application/json", pub.ContentType)
	assert.Equal(t, amqp091.Persistent, pub.DeliveryMode)

	msg, err := RosterMessageFromJSON(pub.Body)
	require.NoError(t, err)
	assert.Equal(t, at, msg.Timestamp)
	assert.Equal(t, at, pub.Timestamp)
	assert.Equal(t, []string{"m1", "m2"}, domain.MemberIDs(msg.Members))
	assert.Equal(t, "Hana", msg.Members[0].Name)
}

func TestPublishRoster_Failure(t *testing.T) {
	ch := &fakeChannel{publishErr: amqp091.ErrClosed}
	p, err := newPublisher(&fakeConn{}, ch, "companion.roster", discard())
	require.NoError(t, err)

	err = p.PublishRoster(context.Background(), domain.RosterSnapshot{Members: domain.SeedMembers(), At: time.Now()})

	assert.ErrorIs(t, err, amqp091.ErrClosed)
}

func TestClose_ReleasesChannelAndConnection(t *testing.T) {
	ch, conn := &fakeChannel{}, &fakeConn{}
	p, err := newPublisher(conn, ch, "x", discard())
	require.NoError(t, err)

	require.NoError(t, p.Close())

	assert.True(t, ch.closed)
	assert.True(t, conn.closed)
}

func TestRosterMessageFromJSON_Invalid(t *testing.T) {
	_, err := RosterMessageFromJSON([]byte("{"))

	assert.Error(t, err)
}
