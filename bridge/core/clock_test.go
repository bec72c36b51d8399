package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClock_NotStarted(t *testing.T) {
	c := NewClock()
	c.Update()
	assert.Zero(t, c.Elapsed())
}

func TestClock_StopKeepsElapsed(t *testing.T) {
	c := NewClock()
	c.Start()
	time.Sleep(2 * time.Millisecond)
	c.Stop()

	elapsed := c.Elapsed()
	assert.GreaterOrEqual(t, elapsed, 2*time.Millisecond)

	c.Update()
	assert.Equal(t, elapsed, c.Elapsed(), "a stopped clock must not advance")
}
