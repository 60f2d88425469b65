package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/hiring-pipeline/internal/domain/model"
	"github.com/target/hiring-pipeline/internal/testutil"
)

func TestStreamSink_PublishAndRead(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	ctx := context.Background()
	sink := NewStreamSink(client, StreamSinkOptions{Stream: "test:events:" + t.Name(), MaxLen: 100})
	t.Cleanup(func() { client.Del(context.Background(), sink.Stream()) })

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	first := model.NewEvent(model.EventRoundCompleted, "cand-1", at, map[string]any{"round_id": float64(1)})
	second := model.NewEvent(model.EventRoundScheduled, "cand-1", at, nil)
	require.NoError(t, sink.Publish(ctx, first))
	require.NoError(t, sink.Publish(ctx, second))

	events, err := sink.Read(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, first.ID, events[0].ID)
	assert.Equal(t, model.EventRoundCompleted, events[0].Kind)
	assert.Equal(t, first.Payload, events[0].Payload)
	assert.Equal(t, model.EventRoundScheduled, events[1].Kind)
}

func TestStreamSink_RejectsEventWithoutID(t *testing.T) {
	sink := NewStreamSink(nil, StreamSinkOptions{})
	assert.Equal(t, DefaultStream, sink.Stream())
	err := sink.Publish(context.Background(), model.Event{Kind: model.EventRoundCompleted})
	require.Error(t, err)
}
