// Package main runs the commentlint CLI.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

type pkgInfo struct {
	Dir         string   `json:"Dir"`
	GoFiles     []string `json:"GoFiles"`
	TestGoFiles []string `json:"TestGoFiles"`
}

type finding struct {
	pos token.Position
	msg string
}

type golangciConfig struct {
	Issues struct {
		MaxIssuesPerLinter int      `yaml:"max-issues-per-linter"`
		ExcludeDirs        []string `yaml:"exclude-dirs"`
		ExcludeFiles       []string `yaml:"exclude-files"`
	} `yaml:"issues"`
}

// main is the entrypoint for the comment linter CLI.
func main() {
	configPath := flag.String("config", ".golangci.yml", "golangci-style config holding issue exclusions")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [packages]\n", os.Args[0])
		fmt.Fprintf(flag.CommandLine.Output(), "Ensures every function and exported type has a doc comment. Defaults to ./...\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	patterns := flag.Args()
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	if err := run(*configPath, patterns); err != nil {
		fmt.Fprintf(os.Stderr, "commentlint: %v\n", err)
		os.Exit(1)
	}
}

// run lints every file of the listed packages and reports findings.
func run(configPath string, patterns []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	pkgs, err := listPackages(patterns)
	if err != nil {
		return err
	}
	excludeDirs := normaliseDirs(cfg.Issues.ExcludeDirs)
	excludeRegex, err := compileRegexps(cfg.Issues.ExcludeFiles)
	if err != nil {
		return err
	}
	limit := cfg.Issues.MaxIssuesPerLinter

	fset := token.NewFileSet()
	var findings []finding
	for _, pkg := range pkgs {
		files := append([]string{}, pkg.GoFiles...)
		files = append(files, pkg.TestGoFiles...)
		for _, file := range files {
			filename := filepath.Join(pkg.Dir, file)
			rel := filepath.ToSlash(relativePath(filename))
			if shouldExclude(rel, excludeDirs, excludeRegex) || isGeneratedFile(filename) {
				continue
			}
			f, err := parser.ParseFile(fset, filename, nil, parser.ParseComments)
			if err != nil {
				return fmt.Errorf("parse %s: %w", filename, err)
			}
			findings = append(findings, lintFile(fset, f)...)
		}
	}
	if len(findings) == 0 {
		return nil
	}

	truncated := limit > 0 && len(findings) > limit
	if truncated {
		findings = findings[:limit]
	}
	for _, f := range findings {
		fmt.Fprintf(os.Stderr, "%s:%d:%d: %s\n", relativePath(f.pos.Filename), f.pos.Line, f.pos.Column, f.msg)
	}
	if truncated {
		fmt.Fprintf(os.Stderr, "commentlint: output truncated after %d issues (see %s)\n", limit, configPath)
	}
	return fmt.Errorf("%d undocumented declarations", len(findings))
}

// lintFile returns a finding for each function with a body and each exported type that
// lacks a doc comment.
func lintFile(fset *token.FileSet, f *ast.File) []finding {
	var out []finding
	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Body == nil || hasDoc(d.Doc) {
				continue
			}
			out = append(out, finding{
				pos: fset.Position(d.Pos()),
				msg: fmt.Sprintf("missing doc comment for function %q", d.Name.Name),
			})
		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			for _, spec := range d.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok || !ts.Name.IsExported() {
					continue
				}
				if hasDoc(ts.Doc) || (!d.Lparen.IsValid() && hasDoc(d.Doc)) {
					continue
				}
				out = append(out, finding{
					pos: fset.Position(ts.Pos()),
					msg: fmt.Sprintf("missing doc comment for exported type %q", ts.Name.Name),
				})
			}
		}
	}
	return out
}

// hasDoc reports whether a comment group carries text.
func hasDoc(doc *ast.CommentGroup) bool {
	return doc != nil && strings.TrimSpace(doc.Text()) != ""
}

// loadConfig reads exclusion settings from a golangci-lint YAML file. A missing file is empty config.
func loadConfig(path string) (golangciConfig, error) {
	var cfg golangciConfig
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// normaliseDirs trims "./" prefixes and converts directories to forward slashes.
func normaliseDirs(dirs []string) []string {
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		d = strings.TrimSpace(strings.TrimPrefix(d, "./"))
		if d == "" {
			continue
		}
		out = append(out, filepath.ToSlash(d))
	}
	return out
}

// compileRegexps compiles the exclude-files patterns.
func compileRegexps(patterns []string) ([]*regexp.Regexp, error) {
	var out []*regexp.Regexp
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		rx, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude regex %q: %w", p, err)
		}
		out = append(out, rx)
	}
	return out, nil
}

// listPackages invokes `go list -json` for the provided patterns and returns the package metadata.
func listPackages(patterns []string) ([]pkgInfo, error) {
	args := append([]string{"list", "-json"}, patterns...)
	cmd := exec.Command("go", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bufio.NewReader(stdout))
	var pkgs []pkgInfo
	for dec.More() {
		var info pkgInfo
		if err := dec.Decode(&info); err != nil {
			_ = cmd.Wait()
			return nil, err
		}
		pkgs = append(pkgs, info)
	}
	if err := cmd.Wait(); err != nil {
		return nil, err
	}
	return pkgs, nil
}

// isGeneratedFile checks if the file starts with the standard "Code generated" header.
func isGeneratedFile(filename string) bool {
	f, err := os.Open(filename)
	if err != nil {
		return false
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for i := 0; i < 10 && scanner.Scan(); i++ {
		line := scanner.Text()
		if strings.Contains(line, "Code generated") || strings.Contains(line, "DO NOT EDIT") {
			return true
		}
	}
	return false
}

// relativePath converts an absolute path to one relative to the repo root when possible.
func relativePath(path string) string {
	if rel, err := filepath.Rel(".", path); err == nil {
		return rel
	}
	return path
}

// shouldExclude reports whether rel falls under an excluded dir or matches an excluded pattern.
func shouldExclude(rel string, dirs []string, regex []*regexp.Regexp) bool {
	for _, d := range dirs {
		if rel == d || strings.HasPrefix(rel, d+"/") {
			return true
		}
	}
	for _, rx := range regex {
		if rx.MatchString(rel) {
			return true
		}
	}
	return false
}
