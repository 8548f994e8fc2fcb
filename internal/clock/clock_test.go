package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixed(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.FixedZone("CET", 3600))
	c := NewFixed(start)

	assert.Equal(t, time.UTC, c.Now().Location())
	assert.True(t, c.Now().Equal(start))

	c.Advance(90 * time.Second)
	assert.True(t, c.Now().Equal(start.Add(90*time.Second)))
}

func TestSystem_UTC(t *testing.T) {
	assert.Equal(t, time.UTC, NewSystem().Now().Location())
}
