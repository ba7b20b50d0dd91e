package kvstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/nice-weather-discovery/internal/domain"
)

func TestMemory_GetAbsent(t *testing.T) {
	m := NewMemory()

	_, err := m.Get(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemory_SetAndGet(t *testing.T) {
	m := NewMemory()

	require.NoError(t, m.Set(context.Background(), "state:viewport", `{"zoom":11}`))
	v, err := m.Get(context.Background(), "state:viewport")
	require.NoError(t, err)
	assert.Equal(t, `{"zoom":11}`, v)
}

func TestMemory_LastWriteWins(t *testing.T) {
	m := NewMemory()

	require.NoError(t, m.Set(context.Background(), "k", "first"))
	require.NoError(t, m.Set(context.Background(), "k", "second"))

	v, err := m.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "second", v)
}
