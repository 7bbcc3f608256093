package fileset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/structmerge/internal/artifact"
	"github.com/dusk-indust/structmerge/internal/parse"
)

// writeTree creates files below dir from a path→content map.
func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func readFixture(t *testing.T, relPath string) string {
	t.Helper()
	data, err := os.ReadFile("../../" + relPath)
	require.NoError(t, err, "reading fixture %s", relPath)
	return string(data)
}

func readOut(t *testing.T, dir, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func resultFor(r *Report, path string) (FileResult, bool) {
	for _, f := range r.Files {
		if f.Path == path {
			return f, true
		}
	}
	return FileResult{}, false
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a/x.go":      "package a\n",
		"b.txt":       "hello",
		"vendor/y.go": "package y\n",
	})

	root, err := Load(dir, artifact.Left, []string{"vendor/**"})
	require.NoError(t, err)
	require.NotNil(t, root)
	assert.Equal(t, TypeDir, root.Type)

	files := Files(root)
	require.Len(t, files, 2)
	assert.Equal(t, "a/x.go", files[0].Label)
	assert.Equal(t, "a/x.go", files[0].Unique)
	assert.Equal(t, "b.txt", files[1].Label)
	assert.Equal(t, Digest([]byte("hello")), files[1].Digest)
	assert.False(t, files[1].Ordered, "directory entries are unordered")
}

func TestLoad_MissingDirIsNil(t *testing.T) {
	root, err := Load(filepath.Join(t.TempDir(), "nope"), artifact.Base, nil)
	require.NoError(t, err)
	assert.Nil(t, root)
}

func TestLoad_FileIsError(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"f": "x"})
	_, err := Load(filepath.Join(dir, "f"), artifact.Left, nil)
	assert.Error(t, err)
}

func TestDigest_Stable(t *testing.T) {
	assert.Equal(t, Digest([]byte("abc")), Digest([]byte("abc")))
	assert.NotEqual(t, Digest([]byte("abc")), Digest([]byte("abd")))
	assert.Len(t, Digest(nil), 64)
}

func TestExcluded(t *testing.T) {
	assert.True(t, Excluded([]string{"**/*.log"}, "a/b/c.log"))
	assert.False(t, Excluded([]string{"**/*.log"}, "a/b/c.go"))
	assert.False(t, Excluded(nil, "x"))
}

func TestMerger_Merge(t *testing.T) {
	root := t.TempDir()
	left, base, right, out := filepath.Join(root, "left"), filepath.Join(root, "base"), filepath.Join(root, "right"), filepath.Join(root, "out")

	writeTree(t, base, map[string]string{
		"same.txt":     "same\n",
		"gone.txt":     "doomed\n",
		"edit.txt":     "v0\n",
		"shop/cart.go": readFixture(t, "testdata/merge/go/base.go"),
	})
	writeTree(t, left, map[string]string{
		"same.txt":     "same\n",
		"edit.txt":     "v1\n",
		"left.txt":     "from left\n",
		"shop/cart.go": readFixture(t, "testdata/merge/go/left.go"),
	})
	writeTree(t, right, map[string]string{
		"same.txt":     "same\n",
		"gone.txt":     "doomed\n",
		"edit.txt":     "v0\n",
		"right.txt":    "from right\n",
		"shop/cart.go": readFixture(t, "testdata/merge/go/right.go"),
	})

	m := New(Options{Workers: 2, Parser: parse.NewTreeSitterParser()})
	res, err := m.Merge(context.Background(), left, base, right)
	require.NoError(t, err)
	require.NoError(t, Write(res.Tree, out))

	assert.Equal(t, "same\n", readOut(t, out, "same.txt"))
	assert.Equal(t, "v1\n", readOut(t, out, "edit.txt"))
	assert.Equal(t, "from left\n", readOut(t, out, "left.txt"))
	assert.Equal(t, "from right\n", readOut(t, out, "right.txt"))
	assert.NoFileExists(t, filepath.Join(out, "gone.txt"))

	cart := readOut(t, out, "shop/cart.go")
	assert.Contains(t, cart, "func (c *Cart) Len() int")
	assert.Contains(t, cart, "func NewCart() *Cart")
	assert.Contains(t, cart, `if item == ""`)
	assert.NotContains(t, cart, "<<<<<<<")

	fr, ok := resultFor(res.Report, "shop/cart.go")
	require.True(t, ok)
	assert.Equal(t, StatusStructured, fr.Status)
	assert.False(t, res.Report.HasConflicts())

	_, err = parse.NewTreeSitterParser().Parse(context.Background(), "cart.go", []byte(cart), parse.LangGo, artifact.Left)
	assert.NoError(t, err, "merged file parses")
}

func TestMerger_TextConflict(t *testing.T) {
	root := t.TempDir()
	left, base, right := filepath.Join(root, "left"), filepath.Join(root, "base"), filepath.Join(root, "right")
	writeTree(t, base, map[string]string{"notes.txt": "a\n"})
	writeTree(t, left, map[string]string{"notes.txt": "b\n"})
	writeTree(t, right, map[string]string{"notes.txt": "c\n"})

	res, err := New(Options{Parser: parse.NewTreeSitterParser()}).Merge(context.Background(), left, base, right)
	require.NoError(t, err)

	files := Files(res.Tree)
	require.Len(t, files, 1)
	assert.Equal(t, "<<<<<<< left\nb\n=======\nc\n>>>>>>> right\n", string(files[0].Content))
	assert.True(t, res.Report.HasConflicts())

	fr, ok := resultFor(res.Report, "notes.txt")
	require.True(t, ok)
	assert.Equal(t, StatusConflict, fr.Status)
}

func TestMerger_DeleteModifyConflict(t *testing.T) {
	root := t.TempDir()
	left, base, right := filepath.Join(root, "left"), filepath.Join(root, "base"), filepath.Join(root, "right")
	writeTree(t, base, map[string]string{"keep.txt": "k\n", "f.txt": "a\n"})
	writeTree(t, left, map[string]string{"keep.txt": "k\n"})
	writeTree(t, right, map[string]string{"keep.txt": "k\n", "f.txt": "b\n"})

	res, err := New(Options{}).Merge(context.Background(), left, base, right)
	require.NoError(t, err)

	fr, ok := resultFor(res.Report, "f.txt")
	require.True(t, ok)
	assert.Equal(t, StatusConflict, fr.Status)
	assert.Equal(t, "deleted in left", fr.Reason)
}

func TestMerger_StructuredConflict(t *testing.T) {
	root := t.TempDir()
	left, base, right := filepath.Join(root, "left"), filepath.Join(root, "base"), filepath.Join(root, "right")
	writeTree(t, base, map[string]string{"cart.go": readFixture(t, "testdata/merge/go_conflict/base.go")})
	writeTree(t, left, map[string]string{"cart.go": readFixture(t, "testdata/merge/go_conflict/left.go")})
	writeTree(t, right, map[string]string{"cart.go": readFixture(t, "testdata/merge/go_conflict/right.go")})

	res, err := New(Options{Parser: parse.NewTreeSitterParser()}).Merge(context.Background(), left, base, right)
	require.NoError(t, err)

	fr, ok := resultFor(res.Report, "cart.go")
	require.True(t, ok)
	assert.Equal(t, StatusConflict, fr.Status)
	assert.Positive(t, fr.Conflicts)

	content := string(Files(res.Tree)[0].Content)
	assert.Contains(t, content, "<<<<<<< left")
	assert.Contains(t, content, `"%d item(s)"`)
	assert.Contains(t, content, `"cart with %d items"`)
	assert.Contains(t, content, "func (c *Cart) Add(item string)", "unchanged code is kept once")
}

func TestMerger_MissingLeft(t *testing.T) {
	_, err := New(Options{}).Merge(context.Background(), filepath.Join(t.TempDir(), "x"), "", t.TempDir())
	assert.Error(t, err)
}
