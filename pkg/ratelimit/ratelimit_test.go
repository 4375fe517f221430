package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckAllowsUnderLimit(t *testing.T) {
	l := NewWithLimits(2, 10, 10)
	now := time.Now()

	ok, _, kind := l.Check("1.2.3.4", "personal", now)
	assert.True(t, ok)
	assert.Equal(t, LimitNone, kind)

	ok, _, kind = l.Check("1.2.3.4", "personal", now)
	assert.True(t, ok)
	assert.Equal(t, LimitNone, kind)
}

func TestCheckDeniesOverPerIPMinuteLimit(t *testing.T) {
	l := NewWithLimits(1, 10, 10)
	now := time.Now()

	ok, _, _ := l.Check("1.2.3.4", "personal", now)
	assert.True(t, ok)

	ok, retryAfter, kind := l.Check("1.2.3.4", "personal", now)
	assert.False(t, ok)
	assert.Equal(t, LimitPerIPMinute, kind)
	assert.GreaterOrEqual(t, retryAfter, 0)
}

func TestCheckResetsAfterWindowElapses(t *testing.T) {
	l := NewWithLimits(1, 10, 10)
	now := time.Now()

	ok, _, _ := l.Check("1.2.3.4", "personal", now)
	assert.True(t, ok)

	ok, _, _ = l.Check("1.2.3.4", "personal", now.Add(61*time.Second))
	assert.True(t, ok)
}

func TestCheckIsolatesDifferentInstances(t *testing.T) {
	l := NewWithLimits(10, 10, 1)
	now := time.Now()

	ok, _, _ := l.Check("1.2.3.4", "personal", now)
	assert.True(t, ok)

	ok, _, kind := l.Check("5.6.7.8", "personal", now)
	assert.False(t, ok, "per-instance bucket should be shared across IPs hitting the same instance")
	assert.Equal(t, LimitPerInstance, kind)

	ok, _, _ = l.Check("9.9.9.9", "walmart", now)
	assert.True(t, ok, "a different instance has its own bucket")
}
