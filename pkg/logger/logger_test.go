package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	logger := New()
	assert.NotNil(t, logger)
	assert.NotNil(t, logger.info)
	assert.NotNil(t, logger.error)
	assert.NotNil(t, logger.warn)
}

func TestLogger_RoutesLevels(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := NewWithOutput(&out, &errOut)

	logger.Info("[CAMPAIGN] Run %s started", "abc")
	logger.Warn("[HOSTING] retry %d", 2)
	logger.Error("[INSTAGRAM] container failed: %s", "400")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if assert.Len(t, lines, 2) {
		assert.True(t, strings.HasPrefix(lines[0], "INFO: "))
		assert.Contains(t, lines[0], "[CAMPAIGN] Run abc started")
		assert.True(t, strings.HasPrefix(lines[1], "WARN: "))
		assert.Contains(t, lines[1], "[HOSTING] retry 2")
	}

	assert.True(t, strings.HasPrefix(errOut.String(), "ERROR: "))
	assert.Contains(t, errOut.String(), "[INSTAGRAM] container failed: 400")
}

func TestLogger_ReportsCallerFile(t *testing.T) {
	var out bytes.Buffer
	logger := NewWithOutput(&out, &out)

	logger.Info("where am I")

	assert.Contains(t, out.String(), "logger_test.go:")
}

func TestLogger_NoArgs(t *testing.T) {
	var out bytes.Buffer
	logger := NewWithOutput(&out, &out)

	logger.Warn("plain message")

	assert.Contains(t, out.String(), "WARN: ")
	assert.Contains(t, out.String(), "plain message")
}
