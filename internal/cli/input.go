package cli

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/dmitrijs2005/planboard/internal/shared"
)

// readPassword is a test seam for term.ReadPassword.
// In tests you can replace it with a stub to avoid touching the terminal.
var readPassword = term.ReadPassword

// GetPassword prints prompt to w and reads a password from the terminal
// without echo. A newline is printed after the read to keep the UI tidy.
func GetPassword(w io.Writer, prompt string) (string, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return "", err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	defer shared.WipeByteArray(pw)
	return string(pw), nil
}

// getPasswords prompts for each label in turn.
func getPasswords(w io.Writer, labels ...string) ([]string, error) {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		pw, err := GetPassword(w, l)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", l, err)
		}
		out = append(out, pw)
	}
	return out, nil
}
