package logger

import (
	"testing"

	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
	"github.com/yanews/ya-news/config"
)

func TestLevelFromConfig(t *testing.T) {
	level, err := LevelFromConfig(config.Warn)
	assert.NoError(t, err)
	assert.Equal(t, logging.WARNING, level)

	_, err = LevelFromConfig("verbose")
	assert.Error(t, err)
}
