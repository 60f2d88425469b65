package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/hiring-pipeline/internal/domain/model"
)

type fakeChannel struct {
	declared   string
	durable    bool
	published  []amqp.Publishing
	keys       []string
	publishErr error
	closed     bool
}

func (f *fakeChannel) QueueDeclare(name string, durable, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	f.declared = name
	f.durable = durable
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newPublisher(ch, Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultQueue, ch.declared)
	assert.True(t, ch.durable)

	ev := model.NewEvent(model.EventApplicationSubmitted, "cand-1", time.Now(), map[string]any{"job_id": "job-1"})
	require.NoError(t, p.Publish(context.Background(), ev))

	require.Len(t, ch.published, 1)
	msg := ch.published[0]
	assert.Equal(t, DefaultQueue, ch.keys[0])
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, ev.ID, msg.MessageId)
	assert.Equal(t, "application_submitted", msg.Type)

	var decoded model.Event
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, ev.RecipientID, decoded.RecipientID)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestPublisher_PublishError(t *testing.T) {
	ch := &fakeChannel{publishErr: errors.New("channel closed")}
	p, err := newPublisher(ch, Config{Queue: "custom"})
	require.NoError(t, err)

	err = p.Publish(context.Background(), model.NewEvent(model.EventRoundCompleted, "c", time.Now(), nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amqp publish")
	assert.Equal(t, "custom", ch.declared)
}

func TestDial_RequiresURL(t *testing.T) {
	_, err := Dial(Config{})
	require.Error(t, err)
}
