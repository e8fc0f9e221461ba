package logging_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/campsite-engine/logging"
)

func TestNew_Level(t *testing.T) {
	logger, closer, err := logging.New("debug", "")
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)
}

func TestNew_BadLevel(t *testing.T) {
	_, _, err := logging.New("chatty", "")
	assert.Error(t, err)
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "campground.log")
	logger, closer, err := logging.New("info", path)
	require.NoError(t, err)

	logger.WithField("site_id", "S1").Info("reservation created")
	require.NoError(t, closer.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"msg":"reservation created"`)
	assert.Contains(t, string(raw), `"site_id":"S1"`)
}
