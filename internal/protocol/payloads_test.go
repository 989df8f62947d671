package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionRequest_Seat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		body string
		seat int
		ok   bool
	}{
		{`{"seatIndex":3}`, 3, true},
		{`{"seatIndex":0}`, 0, true},
		{`{"seatIndex":"3"}`, 0, false},
		{`{"seatIndex":2.5}`, 0, false},
		{`{}`, 0, false},
	}
	for _, tt := range tests {
		var req ActionRequest
		require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
		seat, ok := req.Seat()
		assert.Equal(t, tt.ok, ok, tt.body)
		assert.Equal(t, tt.seat, seat, tt.body)
	}
}

func TestActionRequest_ValidAction(t *testing.T) {
	t.Parallel()

	for _, a := range ValidActions {
		assert.True(t, (&ActionRequest{Action: a}).ValidAction())
	}
	assert.False(t, (&ActionRequest{Action: "bet"}).ValidAction())
	assert.False(t, (&ActionRequest{}).ValidAction())
}

func TestStateRequest(t *testing.T) {
	t.Parallel()

	var req StateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"state":{"pot":30}}`), &req))
	assert.True(t, req.HasState())
	assert.Equal(t, DefaultTableID, req.Table())
	assert.Nil(t, req.Notifications)

	req = StateRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"tableId":"t9","notifications":[]}`), &req))
	assert.False(t, req.HasState())
	assert.Equal(t, "t9", req.Table())
	assert.NotNil(t, req.Notifications)
}

func TestNewMessage(t *testing.T) {
	t.Parallel()

	msg, err := NewMessage(MsgSnapshot, Snapshot{Version: 4})
	require.NoError(t, err)

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var back Message
	require.NoError(t, json.Unmarshal(data, &back))
	var snap Snapshot
	require.NoError(t, back.Decode(&snap))
	assert.Equal(t, int64(4), snap.Version)

	pong, err := NewMessage(MsgPong, nil)
	require.NoError(t, err)
	assert.Nil(t, pong.Payload)
}
