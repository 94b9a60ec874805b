// modules.go — import resolution, caching and cycle detection.
//
// A module is a tl file; its value is the value of its last top-level
// expression. Modules evaluate in a fresh child of the prelude scope, so
// they see builtins but never the importer's bindings.
//
// Resolution tries, in order: the importing file's directory, the working
// directory, then each entry of the TLPATH environment list. A spec without
// the ".tl" extension is tried with it appended first.
//
// Successful loads are cached per canonical absolute path for the lifetime
// of the interpreter; failed loads are not, so a fixed file can be
// re-imported. A module that is still evaluating sits in the cache in the
// loading state; importing it again is by definition a cycle.
package tl

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type modState int

const (
	modLoading modState = iota
	modLoaded
)

type moduleRec struct {
	state modState
	value Value
}

// importModule resolves, loads and evaluates a module. site is the span of
// the import call, which every error this returns is located at; the inner
// failure (file system, lex, parse or runtime, with its own location)
// travels along as the cause.
func (ip *Interp) importModule(spec string, site Span) (Value, error) {
	path, err := ip.resolveModule(spec)
	if err != nil {
		return NullV, &RuntimeError{
			Kind: ErrImport,
			Msg:  fmt.Sprintf("cannot import %q: %v", spec, err),
			Line: site.Line, Col: site.StartCol, EndCol: site.EndCol,
			Cause: err,
		}
	}
	canon, err := filepath.Abs(path)
	if err != nil {
		canon = filepath.Clean(path)
	}

	if rec, ok := ip.modules[canon]; ok {
		if rec.state == modLoading {
			return NullV, &RuntimeError{
				Kind: ErrCircularImport,
				Msg:  fmt.Sprintf("circular import: %s", joinCyclePath(ip.loadStack, canon)),
				Line: site.Line, Col: site.StartCol, EndCol: site.EndCol,
			}
		}
		return rec.value, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return NullV, &RuntimeError{
			Kind: ErrImport,
			Msg:  fmt.Sprintf("cannot import %q: %v", spec, err),
			Line: site.Line, Col: site.StartCol, EndCol: site.EndCol,
			Cause: err,
		}
	}
	src := string(data)

	rec := &moduleRec{state: modLoading}
	ip.modules[canon] = rec
	ip.loadStack = append(ip.loadStack, canon)
	ip.fileStack = append(ip.fileStack, canon)
	defer func() {
		ip.loadStack = ip.loadStack[:len(ip.loadStack)-1]
		ip.fileStack = ip.fileStack[:len(ip.fileStack)-1]
	}()

	v, err := ip.evalModule(src)
	if err != nil {
		// Failures are never cached.
		delete(ip.modules, canon)
		if re, ok := err.(*RuntimeError); ok && re.Kind == ErrCircularImport {
			return NullV, err
		}
		return NullV, &RuntimeError{
			Kind: ErrImport,
			Msg:  fmt.Sprintf("import of %q failed: %v", spec, err),
			Line: site.Line, Col: site.StartCol, EndCol: site.EndCol,
			Cause: WrapErrorWithName(err, path, src),
		}
	}
	rec.state = modLoaded
	rec.value = v
	return v, nil
}

// evalModule parses and evaluates module source in a scope that sees only
// the prelude.
func (ip *Interp) evalModule(src string) (Value, error) {
	prog, err := Parse(src)
	if err != nil {
		return NullV, err
	}
	return ip.EvalProgram(prog, NewEnv(ip.Core))
}

// resolveModule finds the file a module spec names.
func (ip *Interp) resolveModule(spec string) (string, error) {
	if filepath.IsAbs(spec) {
		if p, ok := firstExisting(withExt(spec)); ok {
			return p, nil
		}
		return "", fmt.Errorf("module not found")
	}

	var dirs []string
	if cur := ip.currentFile(); cur != "" {
		dirs = append(dirs, filepath.Dir(cur))
	}
	dirs = append(dirs, ".")
	if tlpath := os.Getenv("TLPATH"); tlpath != "" {
		for _, d := range strings.Split(tlpath, string(os.PathListSeparator)) {
			if d != "" {
				dirs = append(dirs, d)
			}
		}
	}

	for _, dir := range dirs {
		if p, ok := firstExisting(withExt(filepath.Join(dir, spec))); ok {
			return p, nil
		}
	}
	return "", fmt.Errorf("module not found in %s", strings.Join(dirs, ", "))
}

// withExt lists the candidate paths for a spec: ".tl" appended first when
// missing, then the spec as written.
func withExt(path string) []string {
	if filepath.Ext(path) == ".tl" {
		return []string{path}
	}
	return []string{path + ".tl", path}
}

func firstExisting(candidates []string) (string, bool) {
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && info.Mode().IsRegular() {
			return c, true
		}
	}
	return "", false
}

// joinCyclePath renders the in-flight import chain from the first visit of
// the repeated module, e.g. "a.tl -> b.tl -> a.tl".
func joinCyclePath(stack []string, repeat string) string {
	start := 0
	for i, p := range stack {
		if p == repeat {
			start = i
			break
		}
	}
	names := make([]string, 0, len(stack)-start+1)
	for _, p := range stack[start:] {
		names = append(names, filepath.Base(p))
	}
	names = append(names, filepath.Base(repeat))
	return strings.Join(names, " -> ")
}
