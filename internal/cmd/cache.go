package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hargabyte/cppgen/internal/index"
	"github.com/hargabyte/cppgen/internal/output"
	"github.com/hargabyte/cppgen/internal/session"
)

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Cache management commands",
	Long:  `Commands for managing .cppgen/cache.db.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget all cached pairs and symbols",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

var cacheIndexCmd = &cobra.Command{
	Use:   "index",
	Short: "Parse every file of the workspace and cache the symbols",
	Long: `Parse every C/C++ file of the workspace that changed since it was last
parsed and store its symbols, so later commands start faster. Entries of
deleted files are pruned.`,
	Args: cobra.NoArgs,
	RunE: runCacheIndex,
}

var cachePairsCmd = &cobra.Command{
	Use:   "pairs",
	Short: "List the cached header/source pairs",
	Args:  cobra.NoArgs,
	RunE:  runCachePairs,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheIndexCmd)
	cacheCmd.AddCommand(cachePairsCmd)
}

// requireCache opens a session that has a cache.
func requireCache(cmd *cobra.Command) (*session.Session, error) {
	_, s, err := openSession(cmd)
	if err != nil {
		return nil, err
	}
	if s.Cache() == nil {
		s.Close()
		return nil, fmt.Errorf("no cache: run 'cppgen init' first")
	}
	return s, nil
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	s, err := requireCache(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	stats, err := s.Cache().GetStats()
	if err != nil {
		return err
	}
	return writeOutput(cmd, &output.CacheOutput{
		Path:    output.RelPath(s.Root(), s.Cache().Path()),
		Pairs:   stats.Pairs,
		Symbols: stats.Symbols,
	})
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	s, err := requireCache(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Cache().Clear(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared")
	return nil
}

func runCacheIndex(cmd *cobra.Command, args []string) error {
	ctx, s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	if s.Cache() == nil {
		return fmt.Errorf("no cache: run 'cppgen init' first")
	}

	files, err := s.Workspace.Files()
	if err != nil {
		return err
	}
	valid := make(map[string]bool, len(files))
	hashes := make(map[string]string, len(files))
	for _, f := range files {
		valid[f] = true
		doc, err := s.Workspace.Documents().OpenPath(f)
		if err != nil {
			continue
		}
		hashes[f] = index.ContentHash(doc.Text())
	}
	changed, err := s.Cache().GetChangedFiles(hashes)
	if err != nil {
		return err
	}

	if err := s.Index.IndexAll(ctx); err != nil {
		return err
	}

	pruned, err := s.Cache().PruneStaleEntries(valid)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d files, %d changed (%d stale entries pruned)\n",
		s.Index.Len(), len(changed), pruned)
	return nil
}

func runCachePairs(cmd *cobra.Command, args []string) error {
	s, err := requireCache(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	matches, err := s.Cache().AllMatches()
	if err != nil {
		return err
	}
	return writeOutput(cmd, output.NewPairsOutput(s.Root(), matches, s.Workspace.IsHeader))
}
