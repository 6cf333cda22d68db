package retell_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/retell-client/pkg/retell"
)

func TestDocument_Accessors(t *testing.T) {
	t.Parallel()

	doc := retell.Document{
		"call_id":         "abc",
		"duration_ms":     float64(1200),
		"latency":         json.Number("0.25"),
		"opt_out":         true,
		"call_cost":       retell.Document{"combined_cost": float64(12)},
		"transcript_list": []any{"hi"},
	}

	value, ok := doc.Get("callId")
	require.True(t, ok)
	assert.Equal(t, "abc", value)

	_, ok = doc.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, "abc", doc.String("call_id"))
	assert.Empty(t, doc.String("durationMs"))

	duration, ok := doc.Float("durationMs")
	require.True(t, ok)
	assert.InDelta(t, 1200.0, duration, 0)

	latency, ok := doc.Float("latency")
	require.True(t, ok)
	assert.InDelta(t, 0.25, latency, 0)

	_, ok = doc.Float("call_id")
	assert.False(t, ok)

	whole, ok := doc.Int("duration_ms")
	require.True(t, ok)
	assert.Equal(t, int64(1200), whole)

	_, ok = doc.Int("latency")
	assert.False(t, ok)

	assert.True(t, doc.Bool("optOut"))
	assert.False(t, doc.Bool("call_id"))

	cost, ok := doc.Doc("callCost").Float("combinedCost")
	require.True(t, ok)
	assert.InDelta(t, 12.0, cost, 0)
	assert.Nil(t, doc.Doc("call_id"))

	var empty retell.Document

	_, ok = empty.Get("call_id")
	assert.False(t, ok)
	assert.Empty(t, empty.String("call_id"))
}

func TestDocument_Decode(t *testing.T) {
	t.Parallel()

	doc := retell.Document{
		"call_id":     "abc",
		"call_status": "ended",
		"metadata":    retell.Document{"customer": "c-1"},
	}

	var call retell.PhoneCall
	require.NoError(t, doc.Decode(&call))
	assert.Equal(t, "abc", call.CallID)
	assert.Equal(t, "ended", call.CallStatus)
	assert.Equal(t, "c-1", call.Metadata["customer"])

	require.Error(t, doc.Decode(call))
}

func TestNewPhoneCall(t *testing.T) {
	t.Parallel()

	call := retell.NewPhoneCall(retell.Document{
		"call_id":     "abc",
		"call_status": "registered",
		"agent_id":    "agent-1",
		"metadata":    retell.Document{"customer": "c-1"},
	})

	assert.Equal(t, "abc", call.CallID)
	assert.Equal(t, "registered", call.CallStatus)
	assert.Equal(t, "agent-1", call.AgentID)
	assert.Equal(t, "c-1", call.Metadata["customer"])
	assert.Nil(t, call.CallCost)
}
