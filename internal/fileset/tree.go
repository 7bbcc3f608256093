// Package fileset merges whole directory trees. Directories and files
// become unordered artifact trees keyed by relative path; files changed on
// both sides are merged structurally when their language is supported.
package fileset

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"lukechampine.com/blake3"

	"github.com/dusk-indust/structmerge/internal/artifact"
)

// Node types of directory trees.
const (
	TypeDir  = "dir"
	TypeFile = "file"
)

// Digest is the hex BLAKE3 hash of a file's content.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Excluded reports whether the slash-separated relative path matches one of
// the doublestar patterns.
func Excluded(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if match, err := doublestar.Match(pattern, rel); err == nil && match {
			return true
		}
	}
	return false
}

// Load reads the directory at root into an artifact tree of revision rev. A
// missing root yields (nil, nil) so that it can serve as an absent base.
func Load(root string, rev artifact.Revision, exclude []string) (*artifact.Artifact, error) {
	info, err := os.Stat(root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", root)
	}

	top := dirNode(rev, ".")
	top.Ordered = true
	dirs := map[string]*artifact.Artifact{".": top}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if Excluded(exclude, rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		parent := dirs[filepath.ToSlash(filepath.Dir(rel))]
		if parent == nil {
			return fmt.Errorf("walking %s: parent of %s not visited", root, rel)
		}

		if d.IsDir() {
			n := dirNode(rev, rel)
			dirs[rel] = n
			parent.AddChild(n)
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		parent.AddChild(FileNode(rev, rel, data))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}
	return top, nil
}

func dirNode(rev artifact.Revision, rel string) *artifact.Artifact {
	a := artifact.New(rev, TypeDir, rel)
	a.Unique = rel
	return a
}

// FileNode returns the artifact of a file at the relative path rel.
func FileNode(rev artifact.Revision, rel string, data []byte) *artifact.Artifact {
	a := artifact.New(rev, TypeFile, rel)
	a.Unique = rel
	a.Content = data
	a.Digest = Digest(data)
	return a
}

// Files returns the file nodes below root sorted by path.
func Files(root *artifact.Artifact) []*artifact.Artifact {
	var out []*artifact.Artifact
	root.Walk(func(a *artifact.Artifact) bool {
		if a.Type == TypeFile && !a.IsConflict() {
			out = append(out, a)
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// Write materializes a merged tree below dir.
func Write(root *artifact.Artifact, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	var werr error
	root.Walk(func(a *artifact.Artifact) bool {
		if werr != nil {
			return false
		}
		path := filepath.Join(dir, filepath.FromSlash(a.Label))
		switch a.Type {
		case TypeDir:
			werr = os.MkdirAll(path, 0o755)
		case TypeFile:
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				werr = err
				return false
			}
			werr = os.WriteFile(path, a.Content, 0o644)
		}
		return werr == nil
	})
	return werr
}
