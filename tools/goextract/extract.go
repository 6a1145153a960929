// Package main implements goextract, a reference Semantic Data Contract
// extractor for Go source, standing in for the "one extractor per
// language, plugged into the core through ports" design the core itself
// declares out of scope.
package main

import (
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/contextfp/cf/internal/semantic"
)

// fileState carries one parsed file through both extraction passes: the
// first allocates definitions and populates the package's name tables,
// the second walks bodies to emit references now that every definition in
// the package is known.
type fileState struct {
	relativePath string
	astFile      *ast.File
	fset         *token.FileSet
	defs         []semantic.Definition
}

// packageInfo is the per-package name resolution table built during pass
// one and consulted during pass two: every cross-file lookup a reference
// walk needs (is this identifier a known global, a known function, a
// known type, a known field of some receiver type) goes through here.
type packageInfo struct {
	importPath string
	globalVars map[string]string            // var/const name -> symbol id
	funcs      map[string]string            // top-level function name -> symbol id
	types      map[string]string            // type name -> symbol id
	fields     map[string]map[string]string // receiver type name -> field name -> symbol id
}

func newPackageInfo(importPath string) *packageInfo {
	return &packageInfo{
		importPath: importPath,
		globalVars: map[string]string{},
		funcs:      map[string]string{},
		types:      map[string]string{},
		fields:     map[string]map[string]string{},
	}
}

// Extract walks every .go file under rootDir (skipping _test.go files,
// directories whose names start with ".", and directories named
// _examples, vendor or node_modules), grouping files into
// packages by directory, and returns one SemanticData document covering
// the whole tree.
func Extract(moduleImportPath, rootDir string) (*semantic.SemanticData, error) {
	dirs, err := collectPackageDirs(rootDir)
	if err != nil {
		return nil, err
	}

	data := &semantic.SemanticData{ProjectRoot: rootDir}

	for _, dir := range dirs {
		importPath := dirImportPath(moduleImportPath, rootDir, dir)
		docs, err := extractPackage(importPath, rootDir, dir)
		if err != nil {
			return nil, err
		}
		data.Documents = append(data.Documents, docs...)
	}

	sort.Slice(data.Documents, func(i, j int) bool {
		return data.Documents[i].RelativePath < data.Documents[j].RelativePath
	})
	return data, nil
}

func collectPackageDirs(rootDir string) ([]string, error) {
	seen := map[string]bool{}
	var dirs []string

	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			base := d.Name()
			if base != "." && (strings.HasPrefix(base, ".") || base == "_examples" || base == "vendor" || base == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		dir := filepath.Dir(path)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(dirs)
	return dirs, nil
}

// dirImportPath derives a package's import path from its location under
// rootDir. This is a syntactic approximation (no go/build module
// resolution), sufficient for generating stable, collision-free symbol
// IDs without requiring the extracted tree to actually build.
func dirImportPath(moduleImportPath, rootDir, dir string) string {
	rel, err := filepath.Rel(rootDir, dir)
	if err != nil || rel == "." {
		return moduleImportPath
	}
	return moduleImportPath + "/" + filepath.ToSlash(rel)
}

func extractPackage(importPath, rootDir, dir string) ([]semantic.DocumentSemantics, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	pkg := newPackageInfo(importPath)
	var files []*fileState

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".go") || strings.HasSuffix(entry.Name(), "_test.go") {
			continue
		}
		full := filepath.Join(dir, entry.Name())
		fset := token.NewFileSet()
		astFile, err := parser.ParseFile(fset, full, nil, parser.ParseComments)
		if err != nil {
			// A file that fails to parse is skipped rather than aborting
			// the whole extraction; goextract is a best-effort demo tool.
			continue
		}
		rel, err := filepath.Rel(rootDir, full)
		if err != nil {
			rel = full
		}
		fs := &fileState{relativePath: filepath.ToSlash(rel), astFile: astFile, fset: fset}
		collectDefinitions(pkg, fs)
		files = append(files, fs)
	}

	var docs []semantic.DocumentSemantics
	for _, fs := range files {
		refs := collectReferences(pkg, fs)
		docs = append(docs, semantic.DocumentSemantics{
			RelativePath: fs.relativePath,
			Language:     "go",
			Definitions:  fs.defs,
			References:   refs,
		})
	}
	return docs, nil
}
