package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	var b bytes.Buffer

	logger := New(&b, false)
	logger.Debug("hidden")
	logger.Info("converted", zap.String("asset", "Hero"))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(b.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "converted", entry["message"])
	assert.Equal(t, "Hero", entry["asset"])
	assert.Contains(t, entry, "timestamp")

	b.Reset()
	New(&b, true).Debug("shown")
	assert.Contains(t, b.String(), `"level":"debug"`)
}

func TestNop(t *testing.T) {
	Nop().Info("nothing")
}
