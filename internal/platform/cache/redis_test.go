package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestNewUnreachableReturnsNilClient(t *testing.T) {
	client, err := New(context.Background(), "127.0.0.1:1")
	require.Error(t, err)
	require.Nil(t, client)
}

func TestJSONRoundTrip(t *testing.T) {
	srv := miniredis.RunT(t)
	client, err := New(context.Background(), srv.Addr())
	require.NoError(t, err)

	type payload struct {
		Code string `json:"code"`
		Year int    `json:"year"`
	}

	require.NoError(t, SetJSON(context.Background(), client, "k", payload{Code: "1.01", Year: 2024}, time.Minute))

	var got payload
	hit, err := GetJSON(context.Background(), client, "k", &got)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, payload{Code: "1.01", Year: 2024}, got)

	hit, err = GetJSON(context.Background(), client, "missing", &got)
	require.NoError(t, err)
	require.False(t, hit)
}
