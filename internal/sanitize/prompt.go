// Package sanitize cleans prompts received from untrusted drivers.
package sanitize

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxPromptSize is 16KB.
	DefaultMaxPromptSize = 16 << 10
	// EnvMaxPromptSize is the environment variable to override the default
	EnvMaxPromptSize = "ARBOR_MAX_PROMPT_SIZE"
)

var (
	ErrPromptTooLarge = errors.New("prompt exceeds maximum allowed size")
	ErrInvalidUTF8    = errors.New("prompt contains invalid UTF-8 sequences")
)

// Prompt enforces the size limit, validates UTF-8 and strips control
// characters other than newline, tab and carriage return. Oversized
// prompts are rejected, never truncated.
func Prompt(input string) (string, error) {
	limit := maxPromptSize()
	if len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrPromptTooLarge, len(input), limit)
	}

	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	// Fast path: if no control chars, return as is.
	clean := true
	for _, r := range input {
		if unicode.IsControl(r) && !isSafeControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return input, nil
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !unicode.IsControl(r) || isSafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}

func maxPromptSize() int {
	if val := os.Getenv(EnvMaxPromptSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxPromptSize
}
