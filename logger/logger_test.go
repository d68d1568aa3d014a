package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProjectLogger(t *testing.T) {
	l := GetProjectLogger()
	assert.Equal(t, projectName, l.Data["name"])
	assert.Same(t, l.Logger, GetProjectLogger().Logger)
}

func TestSetLevel(t *testing.T) {
	require.NoError(t, SetLevel("debug"))
	assert.Equal(t, logrus.DebugLevel, GetProjectLogger().Logger.GetLevel())

	require.Error(t, SetLevel("loud"))

	require.NoError(t, SetLevel("info"))
}
