package stats

import (
	"testing"

	logger "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func TestLoggingSink(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()
	level := logger.GetLevel()
	defer logger.SetLevel(level)

	sink := &LoggingSink{}

	logger.SetLevel(logger.InfoLevel)
	sink.FlushCounter("gateway.backend.error", 3)
	assert.Empty(t, hook.AllEntries())

	logger.SetLevel(logger.DebugLevel)
	sink.FlushCounter("gateway.backend.error", 3)
	sink.FlushTimer("gateway.route.auth.duration", 1.5)

	entries := hook.AllEntries()
	assert.Len(t, entries, 2)
	assert.Equal(t, "gateway.backend.error", entries[0].Data["stat"])
	assert.Equal(t, "counter", entries[0].Data["type"])
	assert.Equal(t, 3.0, entries[0].Data["value"])
	assert.Equal(t, "timer", entries[1].Data["type"])
}
