package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/tinnitrack/internal/client/models"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

var errEmptyInput = errors.New("empty input")

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The trailing newline is trimmed. If EOF occurs after some input was read,
// the partial line is returned.
//
// Example prompt format:
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetPassword prints prompt to w and reads a password from the terminal
// without echo.
func GetPassword(w io.Writer, prompt string) (string, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return "", err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// GetDate reads a YYYY-MM-DD date. An empty answer keeps def when def is set.
func GetDate(reader *bufio.Reader, prompt string, def time.Time, w io.Writer) (time.Time, error) {
	if !def.IsZero() {
		prompt = fmt.Sprintf("%s [%s]", prompt, def.Format(models.DateLayout))
	}
	raw, err := getSimpleText(reader, prompt, w)
	if err != nil {
		return time.Time{}, err
	}
	if raw == "" {
		if def.IsZero() {
			return time.Time{}, errEmptyInput
		}
		return def, nil
	}
	d, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must look like 1990-01-31: %w", err)
	}
	return d, nil
}

// getTextDefault reads a line, keeping def on an empty answer.
func getTextDefault(reader *bufio.Reader, prompt, def string, w io.Writer) (string, error) {
	if def != "" {
		prompt = fmt.Sprintf("%s [%s]", prompt, def)
	}
	v, err := getSimpleText(reader, prompt, w)
	if err != nil {
		return "", err
	}
	if v == "" {
		v = def
	}
	if v == "" {
		return "", errEmptyInput
	}
	return v, nil
}
