// Package host adapts the desktop to the menu synchronizer: the system
// browser opens resolved URLs, the clipboard stands in for the text
// selection and the active page comes from flags or settings.
package host

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"go.uber.org/zap"
)

// Browser launches URLs in an external browser
type Browser struct {
	// Command overrides the platform opener. Extra words are passed as
	// arguments before the URL ("firefox --new-tab").
	Command string

	logger *zap.Logger
	start  func(cmd *exec.Cmd) error
}

// NewBrowser creates a browser launcher; an empty command uses the platform default
func NewBrowser(command string, logger *zap.Logger) *Browser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Browser{
		Command: strings.TrimSpace(command),
		logger:  logger,
		start:   func(cmd *exec.Cmd) error { return cmd.Start() },
	}
}

// Open starts the browser on url without waiting for it to exit
func (b *Browser) Open(ctx context.Context, url string) error {
	cmd, err := b.command(url)
	if err != nil {
		return err
	}
	b.logger.Debug("opening browser", zap.String("command", cmd.Path), zap.String("url", url))
	if err := b.start(cmd); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

func (b *Browser) command(url string) (*exec.Cmd, error) {
	if b.Command != "" {
		fields := strings.Fields(b.Command)
		return exec.Command(fields[0], append(fields[1:], url)...), nil
	}

	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url), nil
	case "linux", "freebsd", "openbsd":
		return exec.Command("xdg-open", url), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url), nil
	}
	return nil, fmt.Errorf("unsupported platform: %s", runtime.GOOS)
}
