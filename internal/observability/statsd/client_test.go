package statsd

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		" round/evaluation ": "round_evaluation",
		"round..evaluation":  "round.evaluation",
		".trimmed.":          "trimmed",
		"":                   "",
	}
	for input, want := range tests {
		assert.Equal(t, want, metricName(input), "input %q", input)
	}
}

func TestClientLine(t *testing.T) {
	t.Parallel()

	c, err := NewClient(Config{Prefix: " .hiring. ", GlobalTags: map[string]string{"env": "prod", " service ": " pipeline "}})
	require.NoError(t, err)

	got := c.line("round.evaluation", "1", "c", map[string]string{"outcome": " passed ", "": "ignored", "env": "stage"})
	assert.Equal(t, "hiring.round.evaluation:1|c|#env:stage,outcome:passed,service:pipeline", got)

	assert.Equal(t, "hiring.x:2|ms", c.line("x", "2", "ms", nil))
	assert.Empty(t, c.line(" ", "1", "c", nil))
}

func TestClientDisabledDropsMetrics(t *testing.T) {
	t.Parallel()

	c, err := NewClient(Config{Enabled: true})
	require.NoError(t, err)
	assert.False(t, c.Enabled())
	c.Count("round.evaluation", 1, nil)
	require.NoError(t, c.Close())

	var nilClient *Client
	assert.False(t, nilClient.Enabled())
	nilClient.Timing("x", time.Second, nil)
	assert.NoError(t, nilClient.Close())
}

func TestClientWritesOverUDP(t *testing.T) {
	t.Parallel()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()

	c, err := NewClient(Config{Enabled: true, Address: pc.LocalAddr().String(), Prefix: "hiring"})
	require.NoError(t, err)
	defer c.Close()
	require.True(t, c.Enabled())

	c.Timing("round.evaluation.duration", 1500*time.Microsecond, map[string]string{"round_type": "assessment"})

	buf := make([]byte, 512)
	require.NoError(t, pc.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, _, err := pc.ReadFrom(buf)
	require.NoError(t, err)

	line := string(buf[:n])
	assert.True(t, strings.HasPrefix(line, "hiring.round.evaluation.duration:1.5|ms"), line)
	assert.Contains(t, line, "|#round_type:assessment")
}
