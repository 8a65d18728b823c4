package redis

import (
	"context"
	"encoding/json"
	"testing"

	"wisefido-radar-sim/internal/common/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishToStream_FormatsValues(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewRedisClient(&config.RedisConfig{Addr: mr.Addr()})
	defer Close(client)

	ctx := context.Background()
	require.NoError(t, Ping(ctx, client))

	id, err := PublishToStream(ctx, client, "radar:data:stream", map[string]interface{}{
		"device_id": "sim-radar-1",
		"count":     3,
		"ok":        true,
		"ratio":     0.5,
		"nested":    map[string]int{"a": 1},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	msgs, err := client.XRange(ctx, "radar:data:stream", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "sim-radar-1", msgs[0].Values["device_id"])
	assert.Equal(t, "3", msgs[0].Values["count"])
	assert.Equal(t, "true", msgs[0].Values["ok"])
	assert.Equal(t, "0.500000", msgs[0].Values["ratio"])
	assert.Equal(t, `{"a":1}`, msgs[0].Values["nested"])
}

func TestPublishJSONToStream(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewRedisClient(&config.RedisConfig{Addr: mr.Addr()})
	defer Close(client)

	ctx := context.Background()
	_, err := PublishJSONToStream(ctx, client, "radar:data:stream", map[string]interface{}{
		"device_type": "Radar",
	})
	require.NoError(t, err)

	msgs, err := client.XRange(ctx, "radar:data:stream", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(msgs[0].Values["data"].(string)), &payload))
	assert.Equal(t, "Radar", payload["device_type"])
	assert.NotEmpty(t, msgs[0].Values["timestamp"])
}
