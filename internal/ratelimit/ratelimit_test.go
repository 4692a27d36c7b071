package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllow_WithinBurst(t *testing.T) {
	krl := New(1, 3)
	defer krl.Stop()

	assert.True(t, krl.Allow("client-a"))
	assert.True(t, krl.Allow("client-a"))
	assert.True(t, krl.Allow("client-a"))
	assert.False(t, krl.Allow("client-a"))
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	krl := New(1, 1)
	defer krl.Stop()

	assert.True(t, krl.Allow("client-a"))
	assert.False(t, krl.Allow("client-a"))

	// A different key gets its own bucket.
	assert.True(t, krl.Allow("client-b"))
}

func TestAllow_Refills(t *testing.T) {
	krl := New(100, 1)
	defer krl.Stop()

	assert.True(t, krl.Allow("client-a"))
	assert.False(t, krl.Allow("client-a"))

	// At 100 rps a token returns within ~10ms.
	time.Sleep(20 * time.Millisecond)
	assert.True(t, krl.Allow("client-a"))
}

func TestStop_Idempotent(t *testing.T) {
	krl := New(1, 1)
	krl.Stop()
	krl.Stop()
}
