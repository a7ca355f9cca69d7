package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/l3aro/cxxflow/internal/config"
	"github.com/l3aro/cxxflow/internal/log"
	"github.com/l3aro/cxxflow/internal/scanner"
	"github.com/l3aro/cxxflow/pkg/ast"
	"github.com/l3aro/cxxflow/pkg/cache"
	"github.com/l3aro/cxxflow/pkg/cfg"
	"github.com/l3aro/cxxflow/pkg/cparse"
)

// analyzer turns source files into graphs using the loaded configuration.
// It is safe for concurrent use.
type analyzer struct {
	lang     cparse.Language
	builder  *cfg.Builder
	settings []string // cache key parts that change the resulting graph
	graphs   *cache.GraphCache
	logger   log.Logger
}

// source is a parsed file together with the bytes it was parsed from.
type source struct {
	file    *ast.File
	content []byte
}

// FunctionReport summarizes the graph of one function.
type FunctionReport struct {
	Name       string `json:"name"`
	Line       int    `json:"line"`
	Complexity int    `json:"complexity"`
	Blocks     int    `json:"blocks"`
	Exits      int    `json:"exits"`
	DeadBlocks int    `json:"dead_blocks"`
}

// FileReport summarizes every function defined in one file.
type FileReport struct {
	Path      string           `json:"path"`
	Language  string           `json:"language"`
	Functions []FunctionReport `json:"functions"`
	Error     string           `json:"error,omitempty"`
}

// newAnalyzer creates an analyzer for c. graphs may be nil to disable caching.
func newAnalyzer(c *config.Config, logger log.Logger, graphs *cache.GraphCache) (*analyzer, error) {
	lang, err := cparse.ParseLanguage(string(c.Language))
	if err != nil {
		return nil, err
	}

	opts := []cfg.Option{
		cfg.WithLogger(logger),
		cfg.WithNoReturn(cfg.NoReturnByName(c.NoReturnFunctions...)),
	}
	if !c.FoldConstants {
		opts = append(opts, cfg.WithEvaluator(nil))
	}

	settings := []string{string(lang), strconv.FormatBool(c.FoldConstants)}
	settings = append(settings, c.NoReturnFunctions...)

	return &analyzer{
		lang:     lang,
		builder:  cfg.NewBuilder(opts...),
		settings: settings,
		graphs:   graphs,
		logger:   logger,
	}, nil
}

// load reads and parses path. lang overrides the configured language when set.
func (a *analyzer) load(path string, lang cparse.Language) (*source, error) {
	if a.lang != cparse.LangAuto {
		lang = a.lang
	}
	if lang == "" || lang == cparse.LangAuto {
		detected, ok := cparse.DetectLanguage(path)
		if !ok {
			return nil, fmt.Errorf("%w: %s", cparse.ErrUnsupportedLanguage, path)
		}
		lang = detected
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	f, err := cparse.ParseBytes(content, lang)
	if err != nil {
		return nil, fmt.Errorf("parsing file %s: %w", path, err)
	}
	f.Path = path
	return &source{file: f, content: content}, nil
}

// function looks up name in src and suggests similar names when it is missing.
func (a *analyzer) function(src *source, name string) (*ast.Function, error) {
	fn, err := cparse.FindFunction(src.file, name)
	if errors.Is(err, cparse.ErrFunctionNotFound) {
		if suggestions := similarFunctions(src.file, name); len(suggestions) > 0 {
			return nil, fmt.Errorf("%w\nDid you mean: %s?", err, strings.Join(suggestions, ", "))
		}
	}
	return fn, err
}

// graph builds the graph of fn without consulting the cache.
func (a *analyzer) graph(fn *ast.Function) *cfg.Graph {
	a.logger.Debug("building graph", "function", fn.Name)
	return a.builder.BuildFunction(fn)
}

// info returns the exported graph of fn, from the cache when possible.
func (a *analyzer) info(src *source, fn *ast.Function) *cfg.CFGInfo {
	if a.graphs == nil {
		return a.graph(fn).Info(fn.Name)
	}

	key := a.key(src, fn)
	if info, ok := a.graphs.Lookup(key); ok {
		a.logger.Debug("cache hit", "function", fn.Name)
		return info
	}
	info := a.graph(fn).Info(fn.Name)
	if err := a.graphs.Store(key, info); err != nil {
		a.logger.Warn("failed to cache graph", "function", fn.Name, "error", err)
	}
	return info
}

// key includes the definition line so overloads sharing a name get their own entry.
func (a *analyzer) key(src *source, fn *ast.Function) string {
	parts := append([]string{fn.Name, strconv.Itoa(fn.Span().Start.Line)}, a.settings...)
	return cache.Key(src.content, parts...)
}

// report summarizes every function in the file at path. Failures are recorded in
// the report so one bad file does not end a scan.
func (a *analyzer) report(path, display string, lang cparse.Language) FileReport {
	src, err := a.load(path, lang)
	if err != nil {
		a.logger.Warn("skipping file", "path", display, "error", err)
		return FileReport{Path: display, Functions: []FunctionReport{}, Error: err.Error()}
	}
	return a.summarize(src, display)
}

func (a *analyzer) summarize(src *source, display string) FileReport {
	r := FileReport{Path: display, Language: src.file.Language, Functions: []FunctionReport{}}
	for _, fn := range src.file.Functions {
		if fn.Body == nil {
			continue
		}
		info := a.info(src, fn)
		r.Functions = append(r.Functions, FunctionReport{
			Name:       fn.Name,
			Line:       fn.Span().Start.Line,
			Complexity: info.CyclomaticComplexity,
			Blocks:     len(info.Blocks),
			Exits:      len(info.ExitBlockIDs),
			DeadBlocks: len(info.DeadBlockIDs),
		})
	}
	return r
}

// scan reports on files with at most jobs files in flight. progress, when set, is
// called after each file. Reports keep the order of files.
func (a *analyzer) scan(ctx context.Context, files []scanner.FileInfo, jobs int, progress func(done, total int)) ([]FileReport, error) {
	reports := make([]FileReport, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	var done atomic.Int64
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			reports[i] = a.report(f.FullPath, f.Path, f.Language)
			if progress != nil {
				progress(int(done.Add(1)), len(files))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// similarFunctions returns up to three defined names that contain name or are
// contained in it, ignoring case.
func similarFunctions(f *ast.File, name string) []string {
	want := strings.ToLower(name)
	seen := make(map[string]bool)
	var out []string
	for _, fn := range f.Functions {
		have := strings.ToLower(fn.Name)
		if seen[fn.Name] || want == "" {
			continue
		}
		if strings.Contains(have, want) || strings.Contains(want, have) {
			seen[fn.Name] = true
			out = append(out, fn.Name)
		}
	}
	sort.Strings(out)
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}

// openCache loads the persisted graph cache. A cache that cannot be read is
// replaced by an empty one.
func openCache(c *config.Config, logger log.Logger) *cache.GraphCache {
	graphs := cache.NewGraphCache(c.CacheSize)
	if err := cache.LoadFromFile(graphs.LRUCache, c.CachePath()); err != nil {
		logger.Warn("ignoring unreadable graph cache", "path", c.CachePath(), "error", err)
		graphs.Clear()
	}
	return graphs
}

// saveCache persists graphs, logging instead of failing the command.
func saveCache(c *config.Config, logger log.Logger, graphs *cache.GraphCache) {
	if graphs == nil {
		return
	}
	if err := cache.PersistToFile(graphs.LRUCache, c.CachePath()); err != nil {
		logger.Warn("failed to save graph cache", "path", c.CachePath(), "error", err)
		return
	}
	stats := graphs.Stats()
	logger.Debug("graph cache saved", "entries", stats.Length, "hits", stats.HitCount, "misses", stats.MissCount)
}
