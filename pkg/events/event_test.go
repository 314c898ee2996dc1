package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeKeepsIdentityAndTime(t *testing.T) {
	e := New(ChatCreated, map[string]interface{}{"chat_id": "c1"})
	e.OccurredAt = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	raw, err := Encode(e)
	require.NoError(t, err)

	var decoded BaseEvent
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, e.ID, decoded.ID)
	assert.Equal(t, ChatCreated, decoded.Type)
	assert.Equal(t, "c1", decoded.Data["chat_id"])
	assert.True(t, e.OccurredAt.Equal(decoded.OccurredAt))
}

func TestNewAssignsDistinctIDs(t *testing.T) {
	a := New(MessageSent, nil)
	b := New(MessageSent, nil)
	assert.NotEmpty(t, a.EventID())
	assert.NotEqual(t, a.EventID(), b.EventID())
}
