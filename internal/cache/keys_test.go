package cache_test

import (
	"context"
	"testing"

	"github.com/climatrix/climatrix/internal/cache"
	"github.com/climatrix/climatrix/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "climate:latest:new delhi", cache.LatestReadingKey("New Delhi"))
	assert.Equal(t, "climate:history:mumbai:48", cache.ReadingHistoryKey("Mumbai", 48))
	assert.Equal(t, "alerts:active:all:HIGH:1:20", cache.ActiveAlertsKey("", "HIGH", 1, 20))
	assert.Equal(t, "groups:list:Pune:all:2:10", cache.GroupListKey("Pune", "", 2, 10))
	assert.Equal(t, "posts:list:all:1:20", cache.PostListKey("", 1, 20))
	assert.Equal(t, "weather:trend:new delhi", cache.WeatherTrendKey("New Delhi"))
}

func TestInvalidateCity(t *testing.T) {
	svc, server := testutil.NewCache(t)

	for _, key := range []string{"climate:latest:mumbai", "climate:history:mumbai:24", "climate:history:mumbai:168", "climate:latest:pune"} {
		require.NoError(t, server.Set(key, "{}"))
	}

	svc.InvalidateCity(context.Background(), "Mumbai")

	assert.False(t, server.Exists("climate:latest:mumbai"))
	assert.False(t, server.Exists("climate:history:mumbai:24"))
	assert.False(t, server.Exists("climate:history:mumbai:168"))
	assert.True(t, server.Exists("climate:latest:pune"))
}

func TestInvalidateCityMatchesLiterally(t *testing.T) {
	svc, server := testutil.NewCache(t)

	keys := []string{"climate:history:port[a:24", "climate:history:porta:24", "climate:history:port*:24", "climate:history:portb:24"}
	for _, key := range keys {
		require.NoError(t, server.Set(key, "{}"))
	}

	svc.InvalidateCity(context.Background(), "Port[A")
	assert.False(t, server.Exists("climate:history:port[a:24"))
	assert.True(t, server.Exists("climate:history:porta:24"))

	svc.InvalidateCity(context.Background(), "Port*")
	assert.False(t, server.Exists("climate:history:port*:24"))
	assert.True(t, server.Exists("climate:history:porta:24"))
	assert.True(t, server.Exists("climate:history:portb:24"))
}
