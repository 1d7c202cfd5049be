package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMockClock(t *testing.T) {
	// given
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := &MockClock{FixedNow: start}

	// when
	clock.Advance(90 * time.Minute)

	// then
	assert.Equal(t, start.Add(90*time.Minute), clock.Now())

	clock.SetNow(start)
	assert.Equal(t, start, clock.Now())
}
