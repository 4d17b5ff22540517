package astigesture

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommands(t *testing.T) {
	dir := t.TempDir()

	// Missing file
	ps, err := LoadCommands(filepath.Join(dir, "missing.json"))
	assert.NoError(t, err)
	assert.Empty(t, ps)

	// Order is preserved
	p := filepath.Join(dir, "commands.json")
	require.NoError(t, ioutil.WriteFile(p, []byte(`{"zoom the \"thing\"": "zoom_in", "apple": "screenshot", "mute": "mute_audio"}`), 0644))
	ps, err = LoadCommands(p)
	require.NoError(t, err)
	e := []Phrase{
		{Action: ActionZoomIn, Phrase: `zoom the "thing"`},
		{Action: ActionScreenshot, Phrase: "apple"},
		{Action: ActionMute, Phrase: "mute"},
	}
	assert.Equal(t, e, ps)

	// Save
	require.NoError(t, SaveCommands(p, e))
	ps, err = LoadCommands(p)
	require.NoError(t, err)
	assert.Equal(t, e, ps)

	// Empty
	require.NoError(t, ioutil.WriteFile(p, []byte(" \n"), 0644))
	ps, err = LoadCommands(p)
	assert.NoError(t, err)
	assert.Empty(t, ps)

	// Invalid
	for _, c := range []string{`["mute"]`, `{"mute": 1}`, `{"mute": "mute_audio"`} {
		require.NoError(t, ioutil.WriteFile(p, []byte(c), 0644))
		_, err = LoadCommands(p)
		assert.Error(t, err, c)
	}
}
