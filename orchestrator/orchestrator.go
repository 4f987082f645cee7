// Package orchestrator implements the Pipeline Orchestrator of
// spec.md §4 / §2's data-flow paragraph: it sequences the source paths
// passed to Run (discovered by the caller) → header
// symbols → source symbols → analysis → code generation → optional
// header emission, for one compiler invocation.
//
// File discovery, the .cnx parser itself, and raw file I/O are all
// external collaborators per spec.md §1 ("treated as external
// collaborators, specified only by the contract they expose"); this
// package depends on them only through the narrow interfaces below
// (SourceParser, cache.FileSystem), in the spirit of spec.md §9's
// design note about splitting one wide orchestrator interface into
// narrow capability traits.
package orchestrator

import (
	"crypto/sha256"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cnext-lang/cnextc/analyze"
	"github.com/cnext-lang/cnextc/ast"
	"github.com/cnext-lang/cnextc/cache"
	"github.com/cnext-lang/cnextc/codegen"
	"github.com/cnext-lang/cnextc/collect"
	"github.com/cnext-lang/cnextc/config"
	"github.com/cnext-lang/cnextc/diag"
	"github.com/cnext-lang/cnextc/headers"
	"github.com/cnext-lang/cnextc/symtab"
)

// emittedBanner must match codegen's bannerSentinel (spec.md §6's
// "sentinel string ... used to suppress re-ingestion of emitted
// headers during incremental rebuilds"); duplicated here rather than
// exported from codegen to keep that package's only public surface
// the generator/registry types codegen callers need.
const emittedBanner = "Generated by C-Next Transpiler"

// SourceParser turns one unit's raw text into a parsed ast.Unit. This
// is the external grammar/parser collaborator spec.md §1 assumes
// already exists; cnextc never constructs one itself.
type SourceParser func(path, src string) (*ast.Unit, error)

// UnitResult is everything one source unit's run through the pipeline
// produced.
type UnitResult struct {
	Path         string
	OutputPath   string
	HeaderPath   string // "" when header emission is disabled
	Code         string
	HeaderCode   string
	Diagnostics  []diag.Diagnostic
	Aborted      bool
	ParseError   error
}

// Result is the whole-run outcome.
type Result struct {
	Units       []UnitResult
	Conflicts   []symtab.Conflict
	CppDetected bool
}

// Succeeded reports whether every attempted unit emitted without
// error and no whole-build-stopping symbol conflict was found
// (spec.md §6: "nonzero when any unit has any error or when discovery
// fails").
func (r *Result) Succeeded() bool {
	if len(r.Conflicts) > 0 {
		return false
	}
	for _, u := range r.Units {
		if u.Aborted || u.ParseError != nil {
			return false
		}
	}
	return true
}

// Orchestrator owns the one mutable piece of cross-unit run state this
// package is responsible for: the symbol table, the cache store, and
// the monotone cppDetected flag (spec.md §5: "owned by the
// orchestrator" / "the only writer [of the Symbol Table] is the
// orchestrator").
type Orchestrator struct {
	Config            *config.Config
	Log               *logrus.Logger
	FS                cache.FileSystem
	Cache             *cache.Store
	Table             *symtab.Table
	ParseSource       SourceParser
	TranspilerVersion string

	cppDetected bool
}

// New builds an Orchestrator with its cache opened at
// projectRoot/.cnx. fs and log may be nil to use the OS filesystem and
// a default logrus.Logger respectively.
func New(projectRoot string, cfg *config.Config, fs cache.FileSystem, log *logrus.Logger,
	parse SourceParser, transpilerVersion string) (*Orchestrator, error) {
	if fs == nil {
		fs = cache.OSFileSystem{}
	}
	if log == nil {
		log = logrus.New()
	}
	store, err := cache.Open(projectRoot, transpilerVersion, fs, log)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: opening cache: %w", err)
	}
	return &Orchestrator{
		Config: cfg, Log: log, FS: fs, Cache: store, Table: symtab.New(),
		ParseSource: parse, TranspilerVersion: transpilerVersion,
	}, nil
}

// Run executes the full pipeline over sourcePaths (transitively
// including headerPaths), writing emitted units under outDir
// (directory structure preserved relative to projectRoot).
func (o *Orchestrator) Run(projectRoot string, headerPaths, sourcePaths []string, outDir string) (*Result, error) {
	// Pass 0: cppDetected is determined once, over every header, before
	// any emission decision consults it (spec.md §9 design note:
	// "determine it once in a pre-pass ... so emission never observes
	// the flag flip mid-run").
	headerSrcs := make(map[string]string, len(headerPaths))
	for _, h := range headerPaths {
		data, err := o.FS.ReadFile(h)
		if err != nil {
			o.Log.WithError(err).WithField("file", h).Warn("orchestrator: missing include, skipping")
			continue
		}
		src := string(data)
		if strings.Contains(src, emittedBanner) {
			o.Log.WithField("file", h).Info("orchestrator: skipping previously emitted header (sentinel banner)")
			continue
		}
		headerSrcs[h] = src
		if headers.IsCpp(src) {
			o.cppDetected = true
		}
	}

	// Pass 1: header symbols, cache-first.
	for _, h := range headerPaths {
		src, ok := headerSrcs[h]
		if !ok {
			continue
		}
		lang := symtab.LangC
		if headers.IsCpp(src) {
			lang = symtab.LangCpp
		}
		o.collectHeader(h, src, lang)
	}

	// Pass 2: source symbols.
	units := make(map[string]*ast.Unit, len(sourcePaths))
	unitSrc := make(map[string]string, len(sourcePaths))
	unitCollect := make(map[string]collect.Result, len(sourcePaths))
	collectErrors := make(map[string][]diag.Diagnostic)
	parseErrors := make(map[string]error)
	order := make([]string, 0, len(sourcePaths))

	for _, p := range sourcePaths {
		data, err := o.FS.ReadFile(p)
		if err != nil {
			parseErrors[p] = err
			order = append(order, p)
			continue
		}
		src := string(data)
		unit, err := o.ParseSource(p, src)
		if err != nil {
			o.Log.WithError(err).WithField("file", p).Warn("orchestrator: parse error, unit rejected")
			parseErrors[p] = err
			order = append(order, p)
			continue
		}
		units[p] = unit
		unitSrc[p] = src
		order = append(order, p)

		res := collect.Collect(unit, symtab.LangCnx)
		unitCollect[p] = res
		o.Table.RestoreFromCache(res.Symbols, nil, nil, nil)
		if len(res.Errors) > 0 {
			collectErrors[p] = res.Errors
		}
	}

	result := &Result{CppDetected: o.cppDetected}

	// Symbol conflicts stop the whole build (spec.md §7): "reported
	// once each, severity error, and stop the whole build."
	if conflicts := o.Table.GetConflicts(); len(conflicts) > 0 {
		result.Conflicts = conflicts
		for _, c := range conflicts {
			o.Log.WithFields(logrus.Fields{"name": c.Name, "language": c.Language}).
				Error("orchestrator: symbol conflict, build aborted")
		}
		return result, nil
	}

	// Build the global bitmap/register decl maps and per-scope info the
	// code generator needs, by walking every successfully-parsed unit.
	bitmaps := make(map[string]*ast.BitmapDecl)
	regs := make(map[string]*ast.RegisterDecl)
	scopes := make(map[string]*collect.ScopeInfo)
	for _, p := range order {
		unit, ok := units[p]
		if !ok {
			continue
		}
		collectDeclMaps(unit, bitmaps, regs)
		for name, info := range unitCollect[p].Scopes {
			scopes[name] = info
		}
	}

	modifiedParams := computeModifiedParams(order, units)

	buildMode := "release"
	if o.Config != nil && o.Config.Has("build.mode") {
		buildMode = o.Config.GetString("build.mode")
	}
	emitHeaders := o.Config == nil || !o.Config.Has("emit.headers") || o.Config.GetBool("emit.headers")

	reg := codegen.NewRegistry()

	for _, p := range order {
		ur := UnitResult{Path: p}
		if err, ok := parseErrors[p]; ok {
			ur.ParseError = err
			ur.Aborted = true
			result.Units = append(result.Units, ur)
			continue
		}
		unit := units[p]
		src := unitSrc[p]

		if errs, ok := collectErrors[p]; ok {
			ur.Diagnostics = append(ur.Diagnostics, errs...)
			ur.Aborted = true
			result.Units = append(result.Units, ur)
			continue
		}

		bags, aborted := analyze.RunAll(unit, o.Table, src)
		for _, name := range analyzeOrderNames() {
			if bag, ok := bags[name]; ok {
				ur.Diagnostics = append(ur.Diagnostics, bag.Items()...)
			}
		}
		if aborted {
			ur.Aborted = true
			result.Units = append(result.Units, ur)
			continue
		}

		gen := codegen.NewGenerator(reg, o.Table, scopes, bitmaps, regs, o.cppDetected, buildMode)
		gen.ModifiedParams = modifiedParams
		ur.Code = codegen.EmitUnit(unit, gen)
		ur.OutputPath = outputPath(projectRoot, outDir, p, o.cppDetected)

		if emitHeaders {
			ur.HeaderPath = strings.TrimSuffix(ur.OutputPath, filepath.Ext(ur.OutputPath)) + ".h"
			ur.HeaderCode = codegen.EmitExportedHeader(unit, gen, ur.HeaderPath)
		}

		if err := o.writeUnit(&ur); err != nil {
			return result, err
		}
		result.Units = append(result.Units, ur)
	}

	if err := o.Cache.Flush(); err != nil {
		o.Log.WithError(err).Warn("orchestrator: cache flush failed, continuing (non-fatal)")
	}
	return result, nil
}

func (o *Orchestrator) writeUnit(ur *UnitResult) error {
	if ur.OutputPath == "" {
		return nil
	}
	if err := o.FS.MkdirAll(filepath.Dir(ur.OutputPath), 0o755); err != nil {
		return fmt.Errorf("orchestrator: creating output dir for %s: %w", ur.Path, err)
	}
	if err := o.FS.WriteFile(ur.OutputPath, []byte(ur.Code), 0o644); err != nil {
		return fmt.Errorf("orchestrator: writing %s: %w", ur.OutputPath, err)
	}
	if ur.HeaderPath != "" {
		if err := o.FS.WriteFile(ur.HeaderPath, []byte(ur.HeaderCode), 0o644); err != nil {
			return fmt.Errorf("orchestrator: writing %s: %w", ur.HeaderPath, err)
		}
	}
	return nil
}

// collectHeader handles one header path: cache hit restores symbols
// without re-parsing; cache miss runs the Header Collector and
// populates the cache for next time (spec.md §4.1).
func (o *Orchestrator) collectHeader(path, src string, lang symtab.SourceLanguage) {
	if o.Config != nil && o.Config.Has("cache.enabled") && !o.Config.GetBool("cache.enabled") {
		o.collectHeaderFresh(path, src, lang)
		return
	}
	if o.Cache.IsValid(path) {
		if e, ok := o.Cache.Get(path); ok {
			o.Table.RestoreFromCache(e.Symbols, e.StructFields, e.NeedsStructKeyword, e.EnumBitWidth, e.EnumMembers)
			o.Log.WithField("file", path).Debug("orchestrator: header cache hit")
			return
		}
	}
	o.collectHeaderFresh(path, src, lang)
}

func (o *Orchestrator) collectHeaderFresh(path, src string, lang symtab.SourceLanguage) {
	res := headers.Collect(path, src, lang, o.Log)
	for _, w := range res.Warnings {
		o.Log.WithField("file", path).Warn(w.Message)
	}
	o.Table.RestoreFromCache(res.Symbols, res.StructFields, res.NeedsStructKeyword, res.EnumBitWidth, res.EnumMembers)

	if o.Config == nil || !o.Config.Has("cache.enabled") || o.Config.GetBool("cache.enabled") {
		key := o.cacheKey(path, src)
		o.Cache.Put(path, key, res.Symbols, res.StructFields, res.NeedsStructKeyword, res.EnumBitWidth, res.EnumMembers)
	}
}

func (o *Orchestrator) cacheKey(path, src string) string {
	if o.Config != nil && o.Config.Has("cache.key_strategy") && o.Config.GetString("cache.key_strategy") == "hash" {
		return cache.HashKey(sha256.Sum256([]byte(src)))
	}
	info, err := o.FS.Stat(path)
	if err != nil {
		return cache.HashKey(sha256.Sum256([]byte(src)))
	}
	return cache.MtimeKey(info)
}

func analyzeOrderNames() []string {
	names := make([]string, len(analyze.Order))
	for i, a := range analyze.Order {
		names[i] = a.Name
	}
	return names
}

func outputPath(projectRoot, outDir, srcPath string, cpp bool) string {
	rel, err := filepath.Rel(projectRoot, srcPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(srcPath)
	}
	ext := ".c"
	if cpp {
		ext = ".cpp"
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + ext
	return filepath.Join(outDir, rel)
}

// collectDeclMaps walks unit's top-level and scope-nested declarations,
// registering every bitmap/register by name into the shared maps
// codegen.NewGenerator needs (spec.md §4.3's collector only returns
// symtab entries, not the originating AST nodes; the generator needs
// the nodes themselves for field/member layout).
func collectDeclMaps(unit *ast.Unit, bitmaps map[string]*ast.BitmapDecl, regs map[string]*ast.RegisterDecl) {
	for _, d := range unit.Decls {
		switch n := d.(type) {
		case *ast.BitmapDecl:
			bitmaps[n.Name] = n
		case *ast.RegisterDecl:
			regs[n.Name] = n
		case *ast.ScopeDecl:
			for _, m := range n.Members {
				if m.Bitmap != nil {
					bitmaps[m.Bitmap.Name] = m.Bitmap
				}
				if m.Register != nil {
					regs[m.Register.Name] = m.Register
				}
			}
		}
	}
}
