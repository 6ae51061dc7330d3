package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryReadMissingKey(t *testing.T) {
	c := context.Background()
	m := NewMemory()

	_, err := m.Read(c, "guest")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryWriteReadDelete(t *testing.T) {
	c := context.Background()
	m := NewMemory()

	assert.NoError(t, m.Write(c, "guest", []byte(`[{"id":"7"}]`)))

	blob, err := m.Read(c, "guest")
	assert.NoError(t, err)
	assert.JSONEq(t, `[{"id":"7"}]`, string(blob))

	assert.NoError(t, m.Delete(c, "guest"))
	_, err = m.Read(c, "guest")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryDeleteMissingKeyIsNoop(t *testing.T) {
	m := NewMemory()
	assert.NoError(t, m.Delete(context.Background(), "guest"))
}

func TestMemoryReturnsDefensiveCopies(t *testing.T) {
	c := context.Background()
	m := NewMemory()

	original := []byte(`[{"id":"7"}]`)
	assert.NoError(t, m.Write(c, "guest", original))
	original[0] = 'X'

	blob, err := m.Read(c, "guest")
	assert.NoError(t, err)
	assert.JSONEq(t, `[{"id":"7"}]`, string(blob))

	blob[0] = 'X'
	again, err := m.Read(c, "guest")
	assert.NoError(t, err)
	assert.JSONEq(t, `[{"id":"7"}]`, string(again))
}

func TestMemoryFailWrites(t *testing.T) {
	c := context.Background()
	m := NewMemory()
	m.FailWrites = true

	assert.Error(t, m.Write(c, "guest", []byte("[]")))
	_, err := m.Read(c, "guest")
	assert.ErrorIs(t, err, ErrNotFound)
}
