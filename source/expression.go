// Package source recovers information about call sites from Go source files.
//
// Assertions receive a plain bool, so the literal text of the condition is
// recovered after the fact: the file reported by runtime.Caller is parsed
// once, and the argument of the assertion call on the reported line is cut
// out of the original source bytes.
package source

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"slices"
	"sync"
)

type parsedFile struct {
	once sync.Once
	src  []byte
	fset *token.FileSet
	file *ast.File
	err  error
}

var cache sync.Map // path -> *parsedFile

func load(path string) (*parsedFile, error) {
	v, _ := cache.LoadOrStore(path, &parsedFile{})
	pf := v.(*parsedFile)
	pf.once.Do(func() {
		src, err := os.ReadFile(path)
		if err != nil {
			pf.err = fmt.Errorf("failed to read %s: %w", path, err)
			return
		}
		pf.src = src
		pf.fset = token.NewFileSet()
		pf.file, pf.err = parser.ParseFile(pf.fset, path, src, parser.SkipObjectResolution)
		if pf.err != nil {
			pf.err = fmt.Errorf("failed to parse %s: %w", path, pf.err)
		}
	})
	return pf, pf.err
}

// Expression returns the source text of the first argument of the call to
// one of methods that spans line in the file at path. When several calls
// span the line the innermost one wins. Two innermost calls on the same lines
// cannot be told apart without a column, so no expression is returned.
func Expression(path string, line int, methods ...string) (string, bool) {
	if path == "" || line <= 0 {
		return "", false
	}
	pf, err := load(path)
	if err != nil {
		return "", false
	}

	var (
		best     *ast.CallExpr
		bestSpan = -1
		tied     bool
	)
	ast.Inspect(pf.file, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok || len(call.Args) == 0 {
			return true
		}
		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok || !slices.Contains(methods, sel.Sel.Name) {
			return true
		}
		start := pf.fset.Position(call.Pos()).Line
		end := pf.fset.Position(call.End()).Line
		if line < start || line > end {
			return true
		}
		switch span := end - start; {
		case best == nil || span < bestSpan:
			best, bestSpan, tied = call, span, false
		case span == bestSpan && !encloses(best, call):
			tied = true
		}
		return true
	})
	if best == nil || tied {
		return "", false
	}

	arg := best.Args[0]
	from := pf.fset.Position(arg.Pos()).Offset
	to := pf.fset.Position(arg.End()).Offset
	if from < 0 || to > len(pf.src) || from >= to {
		return "", false
	}
	return string(pf.src[from:to]), true
}

func encloses(outer, inner ast.Node) bool {
	return outer.Pos() <= inner.Pos() && inner.End() <= outer.End()
}

// ExpressionOr is Expression with a "<file>:<line>" fallback.
func ExpressionOr(path string, line int, methods ...string) string {
	if text, ok := Expression(path, line, methods...); ok {
		return text
	}
	return fmt.Sprintf("%s:%d", path, line)
}
