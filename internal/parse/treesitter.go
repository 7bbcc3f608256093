package parse

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"fortio.org/safecast"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/dusk-indust/structmerge/internal/artifact"
)

// ErrSyntax is returned when the source contains syntax errors. Merging a
// partially parsed tree would silently drop code.
var ErrSyntax = errors.New("syntax error")

// Option configures a TreeSitterParser.
type Option func(*TreeSitterParser)

// WithSemiStructured collapses the bodies of named declarations into single
// leaves whose content is the body text. Bodies are then merged as text and
// only the declaration structure is merged as a tree.
func WithSemiStructured(on bool) Option {
	return func(p *TreeSitterParser) { p.semi = on }
}

// TreeSitterParser implements Parser with tree-sitter grammars. A new
// tree-sitter parser is created per Parse call, so concurrent Parse calls are
// safe.
type TreeSitterParser struct {
	languages map[Language]*tree_sitter.Language
	grammars  map[Language]*grammar
	semi      bool
}

// NewTreeSitterParser creates a TreeSitterParser with Go, TypeScript, Python,
// and Rust grammars registered.
func NewTreeSitterParser(opts ...Option) *TreeSitterParser {
	p := &TreeSitterParser{
		languages: map[Language]*tree_sitter.Language{
			LangGo:         tree_sitter.NewLanguage(tree_sitter_go.Language()),
			LangTypeScript: tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
			LangPython:     tree_sitter.NewLanguage(tree_sitter_python.Language()),
			LangRust:       tree_sitter.NewLanguage(tree_sitter_rust.Language()),
		},
		grammars: map[Language]*grammar{
			LangGo:         goGrammar(),
			LangTypeScript: tsGrammar(),
			LangPython:     pyGrammar(),
			LangRust:       rsGrammar(),
		},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Parse builds the artifact tree of a single source file. Every byte of the
// source ends up in a leaf's Leading or Content or in the root's Trailing, so
// rendering the leaves in order reproduces the file.
func (p *TreeSitterParser) Parse(ctx context.Context, path string, source []byte, lang Language, rev artifact.Revision) (*artifact.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tsLang, ok := p.languages[lang]
	if !ok {
		return nil, &UnsupportedError{Lang: lang}
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(tsLang); err != nil {
		return nil, fmt.Errorf("set language %s: %w", lang, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter returned nil tree for %s", path)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("parse %s: %w", path, ErrSyntax)
	}

	cv := &converter{g: p.grammars[lang], source: source, rev: rev, semi: p.semi}
	cursor := root.Walk()
	defer cursor.Close()

	a := cv.node(cursor, false)
	if a == nil {
		a = artifact.New(rev, root.Kind(), root.Kind())
	}
	a.Ordered = true
	a.Trailing = string(source[cv.prevEnd:])
	return a, nil
}

// SupportedLanguages returns the languages this parser can handle.
func (p *TreeSitterParser) SupportedLanguages() []Language {
	langs := make([]Language, 0, len(p.languages))
	for l := range p.languages {
		langs = append(langs, l)
	}
	slices.Sort(langs)
	return langs
}

// Close is a no-op because parsers are created per Parse call.
func (p *TreeSitterParser) Close() error {
	return nil
}

// converter walks a tree-sitter tree and emits artifacts. prevEnd is the end
// offset of the last emitted leaf; skipped text falls into the gap between
// prevEnd and the next leaf.
type converter struct {
	g       *grammar
	source  []byte
	rev     artifact.Revision
	semi    bool
	prevEnd uint
}

// node converts the node under the cursor. It returns nil for comments and
// blank tokens, whose text is folded into the next leaf's leading text.
func (cv *converter) node(cursor *tree_sitter.TreeCursor, inNamed bool) *artifact.Artifact {
	n := cursor.Node()
	kind := n.Kind()

	if cv.g.trivia[kind] || (!n.IsNamed() && isBlank(n.Utf8Text(cv.source))) {
		return nil
	}
	if n.ChildCount() == 0 || cv.g.atoms[kind] {
		return cv.leaf(n, kind+":"+n.Utf8Text(cv.source))
	}
	if cv.semi && inNamed && cursor.FieldName() == "body" {
		return cv.leaf(n, kind)
	}

	a := artifact.New(cv.rev, kind, kind)
	a.Line = line(n)
	a.List = cv.g.lists[kind]
	if name, ok := cv.g.named[kind]; ok {
		if u := name(n, cv.source); u != "" {
			a.Unique = u
			a.Label = kind + " " + u
		}
	}

	// Tokens such as the braces of an unordered container keep their place.
	unordered := cv.g.unordered[kind]
	_, named := cv.g.named[kind]
	if cursor.GotoFirstChild() {
		for {
			token := !cursor.Node().IsNamed()
			if c := cv.node(cursor, named); c != nil {
				c.Ordered = !unordered || token
				a.AddChild(c)
			}
			if !cursor.GotoNextSibling() {
				break
			}
		}
		cursor.GotoParent()
	}
	return a
}

func (cv *converter) leaf(n *tree_sitter.Node, label string) *artifact.Artifact {
	start, end := n.StartByte(), n.EndByte()
	a := artifact.New(cv.rev, n.Kind(), label)
	a.Content = cv.source[start:end]
	if start >= cv.prevEnd {
		a.Leading = string(cv.source[cv.prevEnd:start])
	}
	a.Line = line(n)
	cv.prevEnd = end
	return a
}

func line(n *tree_sitter.Node) int {
	row, err := safecast.Conv[int](n.StartPosition().Row)
	if err != nil {
		return 0
	}
	return row + 1
}
