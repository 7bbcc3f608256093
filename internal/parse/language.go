package parse

import (
	"path/filepath"
	"strings"
)

// Language identifies a source grammar.
type Language string

const (
	LangGo         Language = "go"
	LangTypeScript Language = "typescript"
	LangPython     Language = "python"
	LangRust       Language = "rust"
)

// Tier1Languages lists the languages with a bundled grammar.
var Tier1Languages = []Language{LangGo, LangTypeScript, LangPython, LangRust}

var extToLanguage = map[string]Language{
	".go":  LangGo,
	".ts":  LangTypeScript,
	".tsx": LangTypeScript,
	".py":  LangPython,
	".rs":  LangRust,
}

// LanguageForPath guesses the language of a file from its extension.
func LanguageForPath(path string) (Language, bool) {
	lang, ok := extToLanguage[strings.ToLower(filepath.Ext(path))]
	return lang, ok
}

// ParseLanguage validates a user supplied language name.
func ParseLanguage(name string) (Language, error) {
	for _, l := range Tier1Languages {
		if string(l) == strings.ToLower(name) {
			return l, nil
		}
	}
	return "", &UnsupportedError{Lang: Language(name)}
}
