package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStrategy(t *testing.T) {
	assert.Equal(t, RemoteWins, ParseStrategy("remote_wins"))
	assert.Equal(t, LocalWins, ParseStrategy("LOCAL_WINS"))
	assert.Equal(t, Manual, ParseStrategy("  manual "))
	assert.Equal(t, LatestWins, ParseStrategy("latest_wins"))

	// anything unknown defaults to latest_wins
	assert.Equal(t, LatestWins, ParseStrategy(""))
	assert.Equal(t, LatestWins, ParseStrategy("newest"))
}

func TestOverwrites(t *testing.T) {
	assert.True(t, RemoteWins.Overwrites())
	assert.True(t, LatestWins.Overwrites())
	assert.False(t, LocalWins.Overwrites())
	assert.False(t, Manual.Overwrites())
}
