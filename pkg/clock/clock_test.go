package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeAfterFuncFiresOnAdvance(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := Fake(start)

	var fired []string
	c.AfterFunc(2*time.Second, func() { fired = append(fired, "b") })
	c.AfterFunc(time.Second, func() { fired = append(fired, "a") })
	assert.Equal(t, 2, c.Pending())

	c.Advance(1500 * time.Millisecond)
	assert.Equal(t, []string{"a"}, fired)

	c.Advance(time.Second)
	assert.Equal(t, []string{"a", "b"}, fired)
	assert.Equal(t, 0, c.Pending())
	assert.Equal(t, start.Add(2500*time.Millisecond), c.Now())
}

func TestFakeStopPreventsCallback(t *testing.T) {
	c := Fake(time.Unix(0, 0))
	called := false
	timer := c.AfterFunc(time.Second, func() { called = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())

	c.Advance(time.Minute)
	assert.False(t, called)
}

func TestFakeStopAfterFire(t *testing.T) {
	c := Fake(time.Unix(0, 0))
	timer := c.AfterFunc(time.Second, func() {})
	c.Advance(time.Second)
	assert.False(t, timer.Stop())
}

func TestFakeNonPositiveDelayRunsImmediately(t *testing.T) {
	c := Fake(time.Unix(0, 0))
	called := false
	c.AfterFunc(0, func() { called = true })
	assert.True(t, called)
	assert.Equal(t, 0, c.Pending())
}
