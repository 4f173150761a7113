package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/d0ngw/mobydock/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedCommand(t *testing.T) {
	dir := t.TempDir()
	conf := filepath.Join(dir, "mobydock.yaml")
	require.NoError(t, os.WriteFile(conf, []byte(`
db:
  driver: sqlite
  url: `+filepath.Join(dir, "mobydock.db")+`
`), 0644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	confPaths = nil
	rootCmd.SetArgs([]string{"seed", "--conf", conf, "--reset"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "seeded 3 messages\n", out.String())
}

func TestSeedWithoutDB(t *testing.T) {
	conf := filepath.Join(t.TempDir(), "mobydock.yaml")
	require.NoError(t, os.WriteFile(conf, []byte("http:\n  addr: 127.0.0.1:0\n"), 0644))

	var out bytes.Buffer
	confPaths = nil
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"seed", "--conf", conf})
	err := rootCmd.Execute()
	assert.ErrorIs(t, err, app.ErrNotPersistent)
	assert.Empty(t, out.String())
}

func TestMissingConf(t *testing.T) {
	confPaths = nil
	rootCmd.SetArgs([]string{"seed"})
	assert.Error(t, rootCmd.Execute())
}
