package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hargabyte/cppgen/internal/config"
	"github.com/hargabyte/cppgen/internal/document"
	"github.com/hargabyte/cppgen/internal/generate"
)

func TestOpenWithoutConfigDir(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(context.Background(), Options{WorkDir: dir})
	require.NoError(t, err)
	defer s.Close()

	root, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(s.Root())
	require.NoError(t, err)
	assert.Equal(t, root, got)
	assert.Empty(t, s.ConfigDir())
	assert.Nil(t, s.Cache())
	assert.Equal(t, config.DefaultConfig().Format.BraceStyle, s.Config.Format.BraceStyle)
}

func TestOpenFindsConfigAbove(t *testing.T) {
	dir := t.TempDir()
	_, err := config.SaveDefault(dir)
	require.NoError(t, err)
	cfgPath := filepath.Join(dir, config.ConfigDirName, config.ConfigFileName)
	require.NoError(t, os.WriteFile(cfgPath, []byte("format:\n  brace_style: same-line\n"), 0644))

	sub := filepath.Join(dir, "src", "ui")
	require.NoError(t, os.MkdirAll(sub, 0755))

	s, err := Open(context.Background(), Options{WorkDir: sub})
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, filepath.Join(dir, config.ConfigDirName), s.ConfigDir())
	assert.Equal(t, dir, s.Root())
	assert.Equal(t, "same-line", s.Config.Format.BraceStyle)
	require.NotNil(t, s.Cache())

	stats, err := s.Cache().GetStats()
	require.NoError(t, err)
	assert.Zero(t, stats.Pairs)
}

func TestOpenNoCache(t *testing.T) {
	dir := t.TempDir()
	_, err := config.SaveDefault(dir)
	require.NoError(t, err)

	s, err := Open(context.Background(), Options{WorkDir: dir, NoCache: true})
	require.NoError(t, err)
	defer s.Close()
	assert.Nil(t, s.Cache())
}

func TestOpenInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format:\n  brace_style: sideways\n"), 0644))

	_, err := Open(context.Background(), Options{WorkDir: dir, ConfigPath: path})
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestInvalidateRereadsFile(t *testing.T) {
	dir := t.TempDir()
	header := filepath.Join(dir, "a.h")
	require.NoError(t, os.WriteFile(header, []byte("int f();\n"), 0644))

	s, err := Open(context.Background(), Options{WorkDir: dir})
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	f, err := s.Generator.File(ctx, header)
	require.NoError(t, err)
	assert.Len(t, f.TopLevel(), 1)

	require.NoError(t, os.WriteFile(header, []byte("int f();\nint g();\n"), 0644))
	s.Invalidate(header)

	f, err = s.Generator.File(ctx, header)
	require.NoError(t, err)
	assert.Len(t, f.TopLevel(), 2)
}

func TestOpenOverride(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(context.Background(), Options{WorkDir: dir, Override: func(c *config.Config) {
		c.Format.BraceStyle = "same-line"
	}})
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, "same-line", string(s.Generator.Options().Style.Braces))

	_, err = Open(context.Background(), Options{WorkDir: dir, Override: func(c *config.Config) {
		c.Format.BraceStyle = "k&r"
	}})
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestBareWorkspaceGenerates(t *testing.T) {
	dir := t.TempDir()
	header := filepath.Join(dir, "a.h")
	require.NoError(t, os.WriteFile(header, []byte("int f(int x);\n"), 0644))

	s, err := Open(context.Background(), Options{WorkDir: dir})
	require.NoError(t, err)
	defer s.Close()
	assert.Empty(t, s.ConfigDir())

	res, err := s.Generator.AddDefinition(context.Background(), generate.DefinitionRequest{
		Path:   header,
		Pos:    document.Position{Line: 0, Character: 4},
		Target: generate.CurrentFile,
	})
	require.NoError(t, err)
	require.NoError(t, s.Apply(res.Edit))

	data, err := os.ReadFile(header)
	require.NoError(t, err)
	assert.Contains(t, string(data), "int f(int x)")
	assert.Greater(t, len(data), len("int f(int x);\n"))
}
