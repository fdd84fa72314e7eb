package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApp_VersionCommand(t *testing.T) {
	app := newApp()
	assert.NoError(t, app.Run([]string{"fchub", "version"}))
}

func TestApp_StartCommandWithInMemoryStore(t *testing.T) {
	app := newApp()
	assert.NoError(t, app.Run([]string{"fchub", "start", "--nickname", "test-node", "--network", "testnet"}))
}

func TestApp_StartCommandRejectsUnknownNetwork(t *testing.T) {
	app := newApp()
	assert.Error(t, app.Run([]string{"fchub", "start", "--network", "bogus"}))
}
