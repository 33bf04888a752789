package credential

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// PromptConfig holds configuration for the interactive masked prompt source.
type PromptConfig struct {
	Message string `mapstructure:"message"`
}

type promptProvider struct{ c PromptConfig }

// Acquire reads the token from the terminal without echoing it. The prompt
// text goes to stderr so stdout stays clean for redirection.
func (p promptProvider) Acquire(_ context.Context) (Credential, error) {
	msg := strings.TrimSpace(p.c.Message)
	if msg == "" {
		msg = "Personal access token"
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return Credential{}, fmt.Errorf("credential prompt: stdin is not a terminal")
	}
	fmt.Fprintf(os.Stderr, "%s: ", msg)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return Credential{}, fmt.Errorf("credential prompt: %w", err)
	}
	return New(string(raw), false)
}
