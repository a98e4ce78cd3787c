package host

import (
	"github.com/atotto/clipboard"
	"go.uber.org/zap"
)

// Selection supplies the text a template is invoked with
type Selection struct {
	// Override wins over the clipboard when non-empty
	Override string

	logger *zap.Logger
	read   func() (string, error)
}

// NewSelection reads from the system clipboard unless override is set
func NewSelection(override string, logger *zap.Logger) *Selection {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selection{Override: override, logger: logger, read: clipboard.ReadAll}
}

// Text returns the current selection. An unreadable clipboard yields "".
func (s *Selection) Text() string {
	if s.Override != "" {
		return s.Override
	}
	text, err := s.read()
	if err != nil {
		s.logger.Debug("clipboard unavailable", zap.Error(err))
		return ""
	}
	return text
}
