package cli

import (
	"io"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/mattn/go-isatty"
)

// highlight writes doc to w, syntax-colored when w is a terminal
func highlight(w io.Writer, doc, language string) error {
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		var buf strings.Builder
		if err := quick.Highlight(&buf, doc, language, "terminal256", "monokai"); err == nil {
			_, err = io.WriteString(w, buf.String())
			return err
		}
	}
	_, err := io.WriteString(w, doc)
	return err
}
