package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageEnvelope(t *testing.T) {
	msg, err := NewMessage(EventNameAccepted, NameAccepted{ID: "u1", Name: "Alice"})
	require.NoError(t, err)

	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"name-accepted","data":{"id":"u1","name":"Alice"}}`, string(raw))

	var decoded Message
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, EventNameAccepted, decoded.Event)

	var payload NameAccepted
	require.NoError(t, json.Unmarshal(decoded.Data, &payload))
	assert.Equal(t, "Alice", payload.Name)
}

func TestMoveIsOpaqueToTheEnvelope(t *testing.T) {
	// The hub forwards moves without decoding their game-specific shape.
	raw := json.RawMessage(`{"type":"raise","amount":50}`)
	msg, err := NewMessage(EventMakeMove, MakeMove{RoomCode: "AB12", Move: raw})
	require.NoError(t, err)

	var decoded Message
	data, _ := json.Marshal(msg)
	require.NoError(t, json.Unmarshal(data, &decoded))

	var mm MakeMove
	require.NoError(t, json.Unmarshal(decoded.Data, &mm))
	assert.JSONEq(t, string(raw), string(mm.Move))
}

func TestEmptyPayloadOmitsData(t *testing.T) {
	msg := &Message{Event: EventUserList}
	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"user-list"}`, string(raw))
}
