package readingquiz

import (
	"bytes"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerboseLog(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		SetVerbose(false)
	})

	SetVerbose(false)
	assert.False(t, Verbose())
	VerboseLog("hidden %d", 1)
	assert.Empty(t, buf.String())

	SetVerbose(true)
	assert.True(t, Verbose())
	VerboseLog("shown %d", 2)
	assert.Contains(t, buf.String(), "shown 2")
}
