package mcptools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/structmerge/internal/artifact"
	"github.com/dusk-indust/structmerge/internal/config"
	"github.com/dusk-indust/structmerge/internal/dump"
	"github.com/dusk-indust/structmerge/internal/merge"
	"github.com/dusk-indust/structmerge/internal/parse"
	"github.com/dusk-indust/structmerge/internal/stats"
	"github.com/dusk-indust/structmerge/internal/store"
)

// MergeService holds the parser, the matching store and the merge settings
// used by MCP tool handlers.
type MergeService struct {
	parser parse.Parser
	store  store.Store
	cfg    *config.Config
	log    *slog.Logger
}

// NewMergeService creates a MergeService. A nil cfg uses the defaults.
func NewMergeService(p parse.Parser, s store.Store, cfg *config.Config, log *slog.Logger) *MergeService {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = slog.Default()
	}
	return &MergeService{parser: p, store: s, cfg: cfg, log: log}
}

// language resolves the language of a tool call from its explicit name or,
// failing that, from the file name.
func language(name, path string) (parse.Language, error) {
	if name != "" {
		return parse.ParseLanguage(name)
	}
	if path == "" {
		return "", errors.New("language or path is required")
	}
	lang, ok := parse.LanguageForPath(path)
	if !ok {
		return "", &parse.UnsupportedError{Lang: parse.Language(filepath.Ext(path))}
	}
	return lang, nil
}

func (s *MergeService) parse(ctx context.Context, path, source string, lang parse.Language, rev artifact.Revision) (*artifact.Artifact, error) {
	if path == "" {
		path = "input"
	}
	tree, err := s.parser.Parse(ctx, path, []byte(source), lang, rev)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rev, err)
	}
	return tree, nil
}

func (s *MergeService) session(diffOnly bool) (*merge.Context, error) {
	opts := s.cfg.MergeOptions(s.log, stats.Discard{})
	opts.DiffOnly = diffOnly
	return merge.NewContext(opts)
}

// MergeSources merges two or three versions of a file and returns the merged
// source with conflict markers.
func (s *MergeService) MergeSources(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input MergeSourcesInput,
) (*mcp.CallToolResult, MergeSourcesOutput, error) {
	lang, err := language(input.Language, input.Path)
	if err != nil {
		return nil, MergeSourcesOutput{}, err
	}

	left, err := s.parse(ctx, input.Path, input.Left, lang, artifact.Left)
	if err != nil {
		return nil, MergeSourcesOutput{}, err
	}
	right, err := s.parse(ctx, input.Path, input.Right, lang, artifact.Right)
	if err != nil {
		return nil, MergeSourcesOutput{}, err
	}
	var base *artifact.Artifact
	if input.Base != nil {
		if base, err = s.parse(ctx, input.Path, *input.Base, lang, artifact.Base); err != nil {
			return nil, MergeSourcesOutput{}, err
		}
	}

	mc, err := s.session(false)
	if err != nil {
		return nil, MergeSourcesOutput{}, err
	}
	res, err := mc.Merge(left, base, right)
	if err != nil {
		return nil, MergeSourcesOutput{}, fmt.Errorf("merge: %w", err)
	}

	var sb strings.Builder
	if err := dump.WriteSource(&sb, res.Target); err != nil {
		return nil, MergeSourcesOutput{}, fmt.Errorf("render: %w", err)
	}
	if err := store.SaveMerge(ctx, s.store, res.Session, res.Matchings, left, base, right, res.Target); err != nil {
		return nil, MergeSourcesOutput{}, err
	}

	out := MergeSourcesOutput{
		Session:    res.Session,
		Merged:     sb.String(),
		Operations: res.Operations,
		Conflicts:  make([]ConflictSummary, 0, len(res.Conflicts)),
	}
	for _, c := range res.Conflicts {
		out.Conflicts = append(out.Conflicts, summarize(c))
	}
	return nil, out, nil
}

func summarize(c merge.ConflictRecord) ConflictSummary {
	cs := ConflictSummary{Seq: c.Seq}
	for _, side := range []struct {
		a   *artifact.Artifact
		dst *string
	}{{c.Left, &cs.Left}, {c.Right, &cs.Right}, {c.Base, &cs.Base}} {
		if side.a == nil {
			continue
		}
		*side.dst = side.a.Label
		if cs.Line == 0 {
			cs.Line = side.a.Line
		}
	}
	return cs
}

// DiffSources matches two versions of a file and stores the matchings.
func (s *MergeService) DiffSources(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DiffSourcesInput,
) (*mcp.CallToolResult, DiffSourcesOutput, error) {
	lang, err := language(input.Language, input.Path)
	if err != nil {
		return nil, DiffSourcesOutput{}, err
	}
	left, err := s.parse(ctx, input.Path, input.Left, lang, artifact.Left)
	if err != nil {
		return nil, DiffSourcesOutput{}, err
	}
	right, err := s.parse(ctx, input.Path, input.Right, lang, artifact.Right)
	if err != nil {
		return nil, DiffSourcesOutput{}, err
	}

	mc, err := s.session(true)
	if err != nil {
		return nil, DiffSourcesOutput{}, err
	}
	ms, err := mc.Diff(left, right)
	if err != nil {
		return nil, DiffSourcesOutput{}, err
	}
	if err := store.SaveMerge(ctx, s.store, mc.ID, ms.All(), left, right); err != nil {
		return nil, DiffSourcesOutput{}, err
	}
	records, err := s.store.Matchings(ctx, mc.ID, 0)
	if err != nil {
		return nil, DiffSourcesOutput{}, fmt.Errorf("query matchings: %w", err)
	}

	out := DiffSourcesOutput{Session: mc.ID, Matchings: records}
	if root, ok := ms.Get(left, right); ok {
		out.Percentage = root.Percentage()
	}
	return nil, out, nil
}

// QueryMatchings returns the stored matchings of a session.
func (s *MergeService) QueryMatchings(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryMatchingsInput,
) (*mcp.CallToolResult, QueryMatchingsOutput, error) {
	if input.Session == "" {
		return nil, QueryMatchingsOutput{}, fmt.Errorf("session is required")
	}
	if input.MinPercentage < 0 || input.MinPercentage > 1 {
		return nil, QueryMatchingsOutput{}, fmt.Errorf("minPercentage %v outside [0,1]", input.MinPercentage)
	}

	records, err := s.store.Matchings(ctx, input.Session, input.MinPercentage)
	if err != nil {
		return nil, QueryMatchingsOutput{}, fmt.Errorf("query matchings: %w", err)
	}
	st, err := s.store.Stats(ctx)
	if err != nil {
		return nil, QueryMatchingsOutput{}, fmt.Errorf("stats: %w", err)
	}
	if records == nil {
		records = []store.MatchRecord{}
	}
	return nil, QueryMatchingsOutput{Matchings: records, Total: len(records), Stats: *st}, nil
}
