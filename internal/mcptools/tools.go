package mcptools

import "github.com/dusk-indust/structmerge/internal/store"

// --- MCP Tool Input Types ---
// The MCP Go SDK derives each tool's JSON schema from these struct tags.

// MergeSourcesInput is the input for the merge_sources MCP tool.
type MergeSourcesInput struct {
	Language string  `json:"language,omitempty" jsonschema:"source language: go, typescript, python or rust. Inferred from path when empty"`
	Path     string  `json:"path,omitempty" jsonschema:"file name used to infer the language and label the merge"`
	Left     string  `json:"left" jsonschema:"the left version of the file"`
	Base     *string `json:"base,omitempty" jsonschema:"the common ancestor. Omit for a two-way merge"`
	Right    string  `json:"right" jsonschema:"the right version of the file"`
}

// ConflictSummary locates one conflict of a merge.
type ConflictSummary struct {
	Seq   uint64 `json:"seq"`
	Left  string `json:"left,omitempty"`
	Right string `json:"right,omitempty"`
	Base  string `json:"base,omitempty"`
	Line  int    `json:"line,omitempty"`
}

// MergeSourcesOutput is the result of the merge_sources MCP tool.
type MergeSourcesOutput struct {
	Session    string            `json:"session"`
	Merged     string            `json:"merged"`
	Operations int               `json:"operations"`
	Conflicts  []ConflictSummary `json:"conflicts"`
}

// DiffSourcesInput is the input for the diff_sources MCP tool.
type DiffSourcesInput struct {
	Language string `json:"language,omitempty" jsonschema:"source language: go, typescript, python or rust. Inferred from path when empty"`
	Path     string `json:"path,omitempty" jsonschema:"file name used to infer the language"`
	Left     string `json:"left" jsonschema:"the left version of the file"`
	Right    string `json:"right" jsonschema:"the right version of the file"`
}

// DiffSourcesOutput is the result of the diff_sources MCP tool.
type DiffSourcesOutput struct {
	Session    string              `json:"session"`
	Percentage float64             `json:"percentage"`
	Matchings  []store.MatchRecord `json:"matchings"`
}

// QueryMatchingsInput is the input for the query_matchings MCP tool.
type QueryMatchingsInput struct {
	Session       string  `json:"session" jsonschema:"session id returned by merge_sources or diff_sources"`
	MinPercentage float64 `json:"minPercentage,omitempty" jsonschema:"only return matchings at or above this percentage, in [0,1]"`
}

// QueryMatchingsOutput is the result of the query_matchings MCP tool.
type QueryMatchingsOutput struct {
	Matchings []store.MatchRecord `json:"matchings"`
	Total     int                 `json:"total"`
	Stats     store.Stats         `json:"stats"`
}
