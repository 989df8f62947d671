package codec

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/holdem-table/internal/protocol"
)

func TestMessagePool_GetPut(t *testing.T) {
	t.Parallel()

	msg := GetMessage()
	assert.NotNil(t, msg)

	msg.Type = "test"
	msg.Payload = []byte("data")
	PutMessage(msg)

	msg2 := GetMessage()
	assert.NotNil(t, msg2)
	assert.Empty(t, msg2.Type)
	assert.Nil(t, msg2.Payload)
}

func TestMessagePool_PutNil(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		PutMessage(nil)
		PutBuffer(nil)
	})
}

func TestEncodeJSON(t *testing.T) {
	t.Parallel()

	data, err := EncodeJSON(protocol.OKResponse{OK: true})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(data))

	// 返回值不受缓冲区复用影响
	other, err := EncodeJSON(protocol.StateResponse{OK: true, Version: 3})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(data))
	assert.Contains(t, string(other), `"version":3`)
}

func TestDecodeMessage(t *testing.T) {
	t.Parallel()

	msg, err := DecodeMessage([]byte(`{"type":"snapshot","payload":{"version":2}}`))
	require.NoError(t, err)
	defer PutMessage(msg)

	assert.Equal(t, protocol.MsgSnapshot, msg.Type)
	var snap protocol.Snapshot
	require.NoError(t, msg.Decode(&snap))
	assert.Equal(t, int64(2), snap.Version)

	_, err = DecodeMessage([]byte(`{`))
	assert.Error(t, err)
}

func TestEncodeJSON_Concurrent(t *testing.T) {
	t.Parallel()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, err := EncodeJSON(protocol.StateResponse{Version: int64(i)})
			assert.NoError(t, err)
			assert.NotEmpty(t, data)
		}()
	}
	wg.Wait()
}
