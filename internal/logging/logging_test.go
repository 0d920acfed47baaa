package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput("audit", false, &buf)
	logger.Debug("hidden")
	logger.Info("shown", "count", 2)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "audit: shown: count=2")

	buf.Reset()
	logger = NewWithOutput("audit", true, &buf)
	logger.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
	assert.True(t, logger.IsDebug())
}
