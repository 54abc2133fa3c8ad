package bot

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// UsageError is returned when a command's arguments cannot be parsed
type UsageError struct {
	Usage string
}

// Error implements the error interface
func (e *UsageError) Error() string {
	return "usage: " + e.Usage
}

// commandArgs returns the text after the command token
func commandArgs(text string) string {
	_, rest := nextWord(text)
	return rest
}

// splitPipe splits "left | right" at the first pipe
func splitPipe(s string) (left, right string) {
	left, right, _ = strings.Cut(s, "|")
	return strings.TrimSpace(left), strings.TrimSpace(right)
}

// nextWord splits off the first whitespace separated word
func nextWord(s string) (word, rest string) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

// parseID reads a numeric id, reporting usage on failure
func parseID(s, usage string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, &UsageError{Usage: usage}
	}
	return id, nil
}

// parseIDs reads every whitespace separated id
func parseIDs(s, usage string) ([]int64, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, &UsageError{Usage: usage}
	}

	ids := make([]int64, 0, len(fields))
	for _, f := range fields {
		id, err := parseID(f, usage)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// extractCommand extracts the command name from message text
// Returns empty string if no command is found
func extractCommand(text string) string {
	if len(text) == 0 || text[0] != '/' {
		return ""
	}

	cmd, _ := nextWord(text[1:])

	// Handle commands with bot username (e.g., /start@mybot)
	cmd, _, _ = strings.Cut(cmd, "@")

	return strings.ToLower(cmd)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
