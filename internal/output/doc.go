// Package output renders cppgen results as YAML, JSON or a plain unified diff.
//
// # Output Types
//
//   - EditOutput: the changes a generator produced (every editing command)
//   - SymbolListOutput: symbols of a file (cppgen symbols, cppgen undefined)
//   - CacheOutput: cache statistics (cppgen cache stats)
//   - PairsOutput: cached header/source pairs (cppgen cache pairs)
//
// # Formats
//
//   - YAML (default): human-readable, stable key order
//   - JSON: same structure as YAML
//   - Diff: only the unified diff of an EditOutput, suitable for git apply
//
// # Density
//
// Density controls how much of an EditOutput is shown:
//
//   - Sparse: touched files and the revealed location
//   - Medium (default): adds per-file line counts
//   - Dense: adds the unified diff
//
// Locations are written as path:line:column with 1-based numbers and paths
// relative to the workspace root.
package output
