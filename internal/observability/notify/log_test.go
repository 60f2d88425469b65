package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/hiring-pipeline/internal/domain/model"
)

func TestLogSink_Publish(t *testing.T) {
	var buf bytes.Buffer
	sink := LogSink{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	ev := model.NewEvent(model.EventFeedbackRecorded, "cand-9", time.Now(), map[string]any{"rating": 5})
	require.NoError(t, sink.Publish(context.Background(), ev))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "pipeline event", line["msg"])
	assert.Equal(t, "feedback_recorded", line["event_kind"])
	assert.Equal(t, "cand-9", line["recipient_id"])
}

func TestSinkFunc_Nil(t *testing.T) {
	var f SinkFunc
	assert.NoError(t, f.Publish(context.Background(), model.Event{}))
}
