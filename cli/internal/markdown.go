package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// renderMarkdown renders markdown content, using glamour for terminal output or plain text otherwise
func renderMarkdown(markdown string, theme string, out io.Writer) string {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		// For non-terminal output (pipes, redirects), return plain markdown
		return markdown
	}

	rendered, err := glamour.Render(markdown, theme)
	if err != nil {
		// Fall back to plain markdown if rendering fails
		return markdown
	}
	return rendered
}

// printMarkdown renders and prints markdown using the configured theme
func printMarkdown(out io.Writer, config *Config, markdown string) {
	fmt.Fprint(out, renderMarkdown(markdown, getTheme(config), out))
}

// getTheme returns the theme from the current context, or "auto" if config is unavailable
func getTheme(config *Config) string {
	if config == nil {
		return "auto"
	}

	ctx, err := config.GetCurrentContext()
	if err != nil || ctx.Rendering.Theme == "" {
		return "auto"
	}

	return ctx.Rendering.Theme
}
