package database

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestConnectRedis(t *testing.T) {
	client, err := ConnectRedis(context.Background(), "")
	require.NoError(t, err)
	require.Nil(t, client)

	_, err = ConnectRedis(context.Background(), "://bad")
	require.Error(t, err)

	mini := miniredis.RunT(t)
	client, err = ConnectRedis(context.Background(), "redis://"+mini.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Set(context.Background(), "campus:ping", "pong", 0).Err())
}
