package shader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveIncludes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "common.wgsl"),
		[]byte("fn helper() -> f32 { return 1.0; }\n"), 0o644))

	src := "#include \"common.wgsl\"\nfn main_body() {}\n"
	out, err := ResolveIncludes(src, dir, 0)
	require.NoError(t, err)
	assert.Contains(t, out, "fn helper()")
	assert.NotContains(t, out, "#include")
}

func TestResolveIncludesNested(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "inner.wgsl"), []byte("// inner\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "outer.wgsl"),
		[]byte("#include \"inner.wgsl\"\n// outer\n"), 0o644))

	out, err := ResolveIncludes("#include \"outer.wgsl\"\n", dir, 0)
	require.NoError(t, err)
	assert.Contains(t, out, "// inner")
	assert.Contains(t, out, "// outer")
}

func TestResolveIncludesRejectsAngleBrackets(t *testing.T) {
	_, err := ResolveIncludes("#include <common.wgsl>\n", t.TempDir(), 0)
	assert.Error(t, err)
}

func TestResolveIncludesMissingFile(t *testing.T) {
	_, err := ResolveIncludes("#include \"missing.wgsl\"\n", t.TempDir(), 0)
	assert.Error(t, err)
}

func TestResolveIncludesCyclesStop(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.wgsl"),
		[]byte("#include \"a.wgsl\"\n"), 0o644))
	_, err := ResolveIncludes("#include \"a.wgsl\"\n", dir, 0)
	assert.Error(t, err)
}

func TestWriteSkeleton(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.wgsl")
	require.NoError(t, WriteSkeleton(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, SkeletonWGSL, string(data))

	assert.Error(t, WriteSkeleton(path), "must not clobber an existing shader")
}

func TestLoadFragmentRejectsOtherExtensions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frag.glsl")
	require.NoError(t, os.WriteFile(path, []byte("void main() {}"), 0o644))
	_, err := LoadFragment(path)
	assert.Error(t, err)
}
