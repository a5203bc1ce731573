package shader

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gogpu/naga"
)

const maxIncludeDepth = 8

var includePattern = regexp.MustCompile(`(?m)^\s*#include\s+(.+?)\s*$`)

// LoadFragment reads a fragment program from disk, resolves #include
// directives and validates the result with the shader compiler. The
// returned source is ready for module creation; on any failure the
// error text is suitable for display in the dashboard.
func LoadFragment(path string) (string, error) {
	if filepath.Ext(path) != ".wgsl" {
		return "", fmt.Errorf("%s: only .wgsl fragment programs are supported", path)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading shader: %w", err)
	}
	resolved, err := ResolveIncludes(string(src), filepath.Dir(path), 0)
	if err != nil {
		return "", err
	}
	if _, err := naga.Compile(resolved); err != nil {
		return "", fmt.Errorf("compiling %s: %w", path, err)
	}
	return resolved, nil
}

// ResolveIncludes expands #include "file" directives relative to dir,
// recursively. Angle-bracket includes have no search path and are
// rejected.
func ResolveIncludes(src, dir string, depth int) (string, error) {
	if depth > maxIncludeDepth {
		return "", fmt.Errorf("includes nested deeper than %d levels", maxIncludeDepth)
	}
	var firstErr error
	out := includePattern.ReplaceAllStringFunc(src, func(line string) string {
		if firstErr != nil {
			return line
		}
		target := strings.TrimSpace(includePattern.FindStringSubmatch(line)[1])
		name, ok := strings.CutPrefix(target, `"`)
		if !ok {
			firstErr = fmt.Errorf("unsupported include %q: only quoted relative paths are allowed", target)
			return line
		}
		name = strings.TrimSuffix(name, `"`)
		body, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			firstErr = fmt.Errorf("resolving include %q: %w", name, err)
			return line
		}
		expanded, err := ResolveIncludes(string(body), filepath.Dir(filepath.Join(dir, name)), depth+1)
		if err != nil {
			firstErr = err
			return line
		}
		return expanded
	})
	return out, firstErr
}

// WriteSkeleton writes the starter fragment program to path, refusing
// to clobber an existing file.
func WriteSkeleton(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := os.WriteFile(path, []byte(SkeletonWGSL), 0o644); err != nil {
		return fmt.Errorf("writing skeleton shader: %w", err)
	}
	return nil
}
