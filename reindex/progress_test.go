package reindex

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, "variable", 100, 10)

	tracker.Add(5)
	assert.Empty(t, buf.String(), "not started")

	tracker.Start()
	tracker.Add(5)
	assert.Empty(t, buf.String(), "below the report interval")
	tracker.Add(20)
	assert.Contains(t, buf.String(), "variable: 25/100 (25.0%)")

	tracker.Add(500)
	assert.Contains(t, buf.String(), "100/100", "capped at total")
}

func TestProgressTracker_Finish(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, "image", 0, 0)

	tracker.Start()
	tracker.Finish()

	output := buf.String()
	assert.Contains(t, output, "image: 0/0 (0.0%)")
	assert.True(t, strings.HasSuffix(output, "\n"))
}
