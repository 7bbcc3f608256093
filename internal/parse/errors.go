package parse

import (
	"errors"
	"fmt"
)

// ErrUnsupportedLanguage is returned for languages without a grammar.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// UnsupportedError names the language that could not be parsed.
type UnsupportedError struct {
	Lang Language
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnsupportedLanguage, string(e.Lang))
}

func (e *UnsupportedError) Unwrap() error { return ErrUnsupportedLanguage }
