package source

import (
	"os"
	"path"
	"path/filepath"
	"sync"

	"golang.org/x/mod/modfile"
)

type moduleRoot struct {
	dir  string
	path string
}

var roots sync.Map // directory -> moduleRoot

// Relative rewrites an absolute source path into "<module path>/<relative
// path>" using the nearest enclosing go.mod. Paths outside of any module are
// returned unchanged.
func Relative(file string) string {
	if file == "" || !filepath.IsAbs(file) {
		return file
	}
	root, ok := findModule(filepath.Dir(file))
	if !ok {
		return file
	}
	rel, err := filepath.Rel(root.dir, file)
	if err != nil {
		return file
	}
	return path.Join(root.path, filepath.ToSlash(rel))
}

func findModule(dir string) (moduleRoot, bool) {
	if v, ok := roots.Load(dir); ok {
		root := v.(moduleRoot)
		return root, root.path != ""
	}

	var root moduleRoot
	goModPath := filepath.Join(dir, "go.mod")
	if data, err := os.ReadFile(goModPath); err == nil {
		if mf, err := modfile.ParseLax(goModPath, data, nil); err == nil && mf.Module != nil {
			root = moduleRoot{dir: dir, path: mf.Module.Mod.Path}
		}
	} else if parent := filepath.Dir(dir); parent != dir {
		root, _ = findModule(parent)
	}

	roots.Store(dir, root)
	return root, root.path != ""
}
