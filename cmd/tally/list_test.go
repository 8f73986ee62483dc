package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateLabel(t *testing.T) {
	assert.Equal(t, "short", truncateLabel("short", 30))
	assert.Equal(t, "abcde...", truncateLabel("abcdefghij", 8))

	// Widths at or below the ellipsis length cut hard instead of slicing
	// negative.
	assert.Equal(t, "abc", truncateLabel("abcdefghij", 3))
	assert.Equal(t, "a", truncateLabel("abcdefghij", 1))
}
