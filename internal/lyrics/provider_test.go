package lyrics

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/lyrics-service/internal/config"
)

// writeScript drops a shell script standing in for the lyrics script.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lyrics.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func testProvider(t *testing.T, scriptBody string) *Provider {
	t.Helper()
	return NewProvider(config.LyricsConfig{
		Interpreter:    "/bin/sh",
		ScriptPath:     writeScript(t, scriptBody),
		TimeoutSeconds: 5,
	}, zap.NewNop())
}

func TestFetch_ParsesScriptOutput(t *testing.T) {
	p := testProvider(t, `echo '{"lyrics": "Is this the real life"}'`)

	lyrics, err := p.Fetch(context.Background(), "Bohemian Rhapsody", "Queen")
	require.NoError(t, err)
	assert.Equal(t, "Is this the real life", lyrics)
}

func TestFetch_PassesTrackAndArtistArgs(t *testing.T) {
	p := testProvider(t, `printf '{"lyrics": "%s / %s"}' "$1" "$2"`)

	lyrics, err := p.Fetch(context.Background(), "Track A", "Artist B")
	require.NoError(t, err)
	assert.Equal(t, "Track A / Artist B", lyrics)
}

func TestFetch_StderrIsError(t *testing.T) {
	p := testProvider(t, `echo '{"lyrics": "x"}'; echo 'no such song' >&2`)

	_, err := p.Fetch(context.Background(), "Nope", "Nobody")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such song")
}

func TestFetch_NonZeroExitIsError(t *testing.T) {
	p := testProvider(t, `exit 3`)

	_, err := p.Fetch(context.Background(), "Track", "Artist")
	require.Error(t, err)
}

func TestFetch_MalformedOutputIsError(t *testing.T) {
	p := testProvider(t, `echo 'not json'`)

	_, err := p.Fetch(context.Background(), "Track", "Artist")
	require.Error(t, err)
}

func TestFetch_EmptyLyricsIsError(t *testing.T) {
	p := testProvider(t, `echo '{"lyrics": ""}'`)

	_, err := p.Fetch(context.Background(), "Track", "Artist")
	require.Error(t, err)
}

func TestCachedProvider_NoRedisFallsThrough(t *testing.T) {
	p := testProvider(t, `echo '{"lyrics": "cached or not"}'`)
	cp := NewCachedProvider(p, nil, 0, zap.NewNop())

	lyrics, err := cp.Lyrics(context.Background(), "Track", "Artist")
	require.NoError(t, err)
	assert.Equal(t, "cached or not", lyrics)
}
