package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionVariables(t *testing.T) {
	assert.Equal(t, "0.0.0-dev", Version)
	assert.Equal(t, "", Commit)
}

func TestVersionString(t *testing.T) {
	originalVersion := Version
	originalCommit := Commit
	defer func() {
		Version = originalVersion
		Commit = originalCommit
	}()

	assert.Equal(t, "0.0.0-dev", VersionString())

	Version = "1.2.0"
	Commit = "abc1234"
	assert.Equal(t, "1.2.0 (abc1234)", VersionString())
}

func TestNewTestLogger(t *testing.T) {
	log := NewTestLogger()
	assert.NotNil(t, log)
	log.Debugw("test logger works", "key", "value")
}
