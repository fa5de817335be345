// Package lyrics fetches song lyrics by shelling out to an external script.
// The script is an opaque collaborator: it takes a track and artist on the
// command line and prints a JSON object with a "lyrics" field on stdout.
package lyrics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/lyrics-service/internal/config"
)

// Provider runs the configured lyrics script.
type Provider struct {
	interpreter string
	script      string
	timeout     time.Duration
	logger      *zap.Logger
}

// NewProvider builds a provider from config.
func NewProvider(cfg config.LyricsConfig, logger *zap.Logger) *Provider {
	return &Provider{
		interpreter: cfg.Interpreter,
		script:      cfg.ScriptPath,
		timeout:     cfg.Timeout(),
		logger:      logger,
	}
}

type scriptOutput struct {
	Lyrics string `json:"lyrics"`
}

// Fetch runs the script for one track/artist pair and returns the lyrics.
func (p *Provider) Fetch(ctx context.Context, track, artist string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.interpreter, p.script, track, artist)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		p.logger.Warn("lyrics script failed",
			zap.String("track", track),
			zap.String("artist", artist),
			zap.String("stderr", strings.TrimSpace(stderr.String())),
			zap.Error(err))
		return "", fmt.Errorf("lyrics script: %w", err)
	}
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		return "", fmt.Errorf("lyrics script: %s", msg)
	}

	var out scriptOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return "", fmt.Errorf("lyrics script output: %w", err)
	}
	if out.Lyrics == "" {
		return "", fmt.Errorf("lyrics not found for %q by %q", track, artist)
	}
	return out.Lyrics, nil
}
