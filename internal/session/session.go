// Package session assembles the pieces a command needs: configuration, the
// workspace, the symbol index acting as oracle, the optional SQLite cache and
// the generator.
package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	slogctx "github.com/veqryn/slog-context"

	"github.com/hargabyte/cppgen/internal/cache"
	"github.com/hargabyte/cppgen/internal/config"
	"github.com/hargabyte/cppgen/internal/edit"
	"github.com/hargabyte/cppgen/internal/generate"
	"github.com/hargabyte/cppgen/internal/index"
	"github.com/hargabyte/cppgen/internal/workspace"
)

// Options control how a session is opened.
type Options struct {
	// WorkDir is where the search for .cppgen starts. It defaults to ".".
	WorkDir string
	// ConfigPath overrides .cppgen/config.yaml.
	ConfigPath string
	// NoCache keeps pairs and symbols in memory even when .cppgen exists.
	NoCache bool
	// Override adjusts the loaded configuration, e.g. from command line
	// flags. The result is validated again.
	Override func(*config.Config)
}

// Session is an open workspace.
type Session struct {
	Config    *config.Config
	Workspace *workspace.Workspace
	Index     *index.Index
	Generator *generate.Generator

	configDir string
	cache     *cache.Cache
}

// Open finds the workspace around opts.WorkDir. The root is the directory
// holding .cppgen, or WorkDir itself when there is none.
func Open(ctx context.Context, opts Options) (*Session, error) {
	workDir := opts.WorkDir
	if workDir == "" {
		workDir = "."
	}
	absWork, err := filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	s := &Session{}
	root := absWork
	configDir, err := config.FindConfigDir(absWork)
	switch {
	case err == nil:
		s.configDir = configDir
		root = filepath.Dir(configDir)
	case !errors.Is(err, config.ErrConfigNotFound):
		return nil, err
	}

	var loadErr error
	switch {
	case opts.ConfigPath != "":
		s.Config, loadErr = config.LoadFromPath(opts.ConfigPath)
	case s.configDir != "":
		s.Config, loadErr = config.LoadFromPath(filepath.Join(s.configDir, config.ConfigFileName))
	default:
		s.Config = config.DefaultConfig()
	}
	if loadErr != nil {
		return nil, loadErr
	}
	if opts.Override != nil {
		opts.Override(s.Config)
		if err := config.Validate(s.Config); err != nil {
			return nil, err
		}
	}

	if s.configDir != "" && !opts.NoCache {
		c, err := cache.Open(s.configDir)
		if err != nil {
			slogctx.Warn(ctx, "cache unavailable, continuing without it", "dir", s.configDir, "error", err)
		} else {
			s.cache = c
		}
	}

	// A nil *cache.Cache must not reach the interface parameters.
	var pairs workspace.PairStore
	var store index.SymbolStore
	if s.cache != nil {
		pairs, store = s.cache, s.cache
	}

	s.Workspace, err = workspace.New(root, s.Config.WorkspaceOptions(), pairs)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("open workspace: %w", err)
	}
	s.Index = index.New(s.Workspace, store)
	s.Generator = generate.New(s.Workspace, s.Index, s.Config.GenerateOptions())

	slogctx.Debug(ctx, "session opened", "root", root, "config_dir", s.configDir, "cache", s.cache != nil)
	return s, nil
}

// Root returns the workspace root.
func (s *Session) Root() string { return s.Workspace.Root() }

// ConfigDir returns the .cppgen directory, or "" when there is none.
func (s *Session) ConfigDir() string { return s.configDir }

// Cache returns the cache database, or nil.
func (s *Session) Cache() *cache.Cache { return s.cache }

// Invalidate forgets everything known about path.
func (s *Session) Invalidate(path string) {
	s.Index.Invalidate(path)
	s.Generator.Invalidate(path)
}

// Apply writes an edit and forgets the files it touched.
func (s *Session) Apply(w *edit.WorkspaceEdit) error {
	if err := s.Generator.Apply(w); err != nil {
		return err
	}
	for _, path := range w.Paths() {
		s.Index.Invalidate(path)
	}
	return nil
}

// Watch starts a watcher that invalidates changed files until ctx is done.
func (s *Session) Watch(ctx context.Context, debounce time.Duration) (*workspace.Watcher, error) {
	w, err := workspace.NewWatcher(s.Workspace, debounce, func(c workspace.Change) {
		s.Invalidate(c.Path)
	})
	if err != nil {
		return nil, err
	}
	go func() {
		if err := w.Run(ctx); err != nil {
			slogctx.Warn(ctx, "watcher stopped", "error", err)
		}
	}()
	slogctx.Debug(ctx, "watching workspace", "directories", w.Watches())
	return w, nil
}

// Close releases the cache.
func (s *Session) Close() error {
	if s.cache != nil {
		return s.cache.Close()
	}
	return nil
}
