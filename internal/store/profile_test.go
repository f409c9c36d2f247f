package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProfileMissingFileIsEmpty(t *testing.T) {
	p, err := LoadProfile(t.TempDir(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)
	assert.Empty(t, p.Settings)
	assert.Empty(t, p.ListActions())
}

func TestMacroRoundTrip(t *testing.T) {
	dir := t.TempDir()
	p, err := LoadProfile(dir, "alice")
	require.NoError(t, err)

	require.NoError(t, p.SaveAction("N", "D", []string{"s1", "s2"}))

	reloaded, err := LoadProfile(dir, "alice")
	require.NoError(t, err)
	m, ok := reloaded.GetAction("N")
	require.True(t, ok)
	assert.Equal(t, Macro{Description: "D", Steps: []string{"s1", "s2"}}, m)

	require.NoError(t, reloaded.DeleteAction("N"))
	_, ok = reloaded.GetAction("N")
	assert.False(t, ok)

	again, err := LoadProfile(dir, "alice")
	require.NoError(t, err)
	_, ok = again.GetAction("N")
	assert.False(t, ok)
}

func TestSaveActionOverwrites(t *testing.T) {
	p, err := LoadProfile(t.TempDir(), "bob")
	require.NoError(t, err)

	require.NoError(t, p.SaveAction("greet", "first", []string{"a"}))
	require.NoError(t, p.SaveAction("greet", "second", []string{"b", "c"}))

	m, ok := p.GetAction("greet")
	require.True(t, ok)
	assert.Equal(t, "second", m.Description)
	assert.Equal(t, []string{"b", "c"}, m.Steps)
	assert.Equal(t, []string{"greet"}, p.ListActions())
}

func TestDeleteMissingActionLeavesStoreUnchanged(t *testing.T) {
	dir := t.TempDir()
	p, err := LoadProfile(dir, "carol")
	require.NoError(t, err)
	require.NoError(t, p.SaveAction("keep", "d", []string{"x"}))

	before := p.ListActions()
	err = p.DeleteAction("ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, before, p.ListActions())

	reloaded, err := LoadProfile(dir, "carol")
	require.NoError(t, err)
	assert.Equal(t, before, reloaded.ListActions())
}

func TestProfileFileFormat(t *testing.T) {
	dir := t.TempDir()
	p, err := LoadProfile(dir, "dave")
	require.NoError(t, err)
	require.NoError(t, p.UpdateSettings(map[string]any{"voice": "Bella"}))
	require.NoError(t, p.SaveAction("n", "d", nil))

	data, err := os.ReadFile(filepath.Join(dir, "dave_profile.json"))
	require.NoError(t, err)

	var raw struct {
		Settings     map[string]any `json:"settings"`
		SavedActions map[string]struct {
			Description string   `json:"description"`
			Steps       []string `json:"steps"`
		} `json:"saved_actions"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "Bella", raw.Settings["voice"])
	assert.Equal(t, "d", raw.SavedActions["n"].Description)
	assert.NotNil(t, raw.SavedActions["n"].Steps)
}

func TestListActionsSorted(t *testing.T) {
	p, err := LoadProfile(t.TempDir(), "erin")
	require.NoError(t, err)
	for _, n := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, p.SaveAction(n, "", []string{}))
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, p.ListActions())
}

func TestSaveFailureIsPersistenceError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	p, err := LoadProfile(dir, "frank")
	require.NoError(t, err)
	// The parent of the profile path is a regular file, so the write must fail.
	p.path = filepath.Join(blocker, "sub", "frank_profile.json")

	err = p.SaveAction("n", "d", []string{"s"})
	assert.ErrorIs(t, err, ErrPersistence)
}
