package utils

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestSetLogOutput(t *testing.T) {
	InitLogger(false)
	var buf bytes.Buffer
	SetLogOutput(&buf)

	log.Info().Str("op", "test").Msg("redirected log line")

	out := buf.String()
	assert.Contains(t, out, "redirected log line")
	assert.NotContains(t, out, "\033[")
}
