package core

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	SetLogOutput(&buf)
	defer SetLogLevel("info")

	SetLogLevel("warn")
	LogInfo("hidden %d", 1)
	assert.Empty(t, buf.String())

	LogWarn("shown %d", 2)
	assert.Contains(t, buf.String(), "shown 2")

	buf.Reset()
	SetLogLevel("not-a-level")
	LogInfo("back to info")
	assert.Contains(t, buf.String(), "back to info")
}
