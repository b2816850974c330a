package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hargabyte/cppgen/internal/generate"
	"github.com/hargabyte/cppgen/internal/output"
)

// switchCmd represents the switch command
var switchCmd = &cobra.Command{
	Use:   "switch <file>",
	Short: "Print the matching header or source file",
	Long: `Print the header matching a source file, or the source file matching a header.

The match is searched in the file's directory, then up the directory tree,
then in the whole workspace, preferring the closest directory. Found pairs are
remembered in .cppgen/cache.db.

Examples:
  cppgen switch include/widget.h
  $EDITOR $(cppgen switch src/widget.cpp)`,
	Args: cobra.ExactArgs(1),
	RunE: runSwitch,
}

// addHeaderGuardCmd represents the add-header-guard command
var addHeaderGuardCmd = &cobra.Command{
	Use:   "add-header-guard <file>",
	Short: "Add or fix the header guard of a header file",
	Long: `Add a header guard in the style of header_guard.style: #pragma once, an
#ifndef/#define guard, or both. An existing guard in another style, or with a
macro that does not match header_guard.define_format, is replaced.

Examples:
  cppgen add-header-guard include/widget.h
  cppgen add-header-guard include/widget.h --dry-run --format diff`,
	Args: cobra.ExactArgs(1),
	RunE: runAddHeaderGuard,
}

// addIncludeCmd represents the add-include command
var addIncludeCmd = &cobra.Command{
	Use:   "add-include <file> <statement>",
	Short: "Add an include directive to a file",
	Long: `Add an include directive after the existing includes of its kind. System
includes (<...>) and project includes ("...") are grouped separately.

Examples:
  cppgen add-include src/widget.cpp '#include <vector>'
  cppgen add-include src/widget.cpp '#include "layout.h"'`,
	Args: cobra.ExactArgs(2),
	RunE: runAddInclude,
}

// createSourceCmd represents the create-source command
var createSourceCmd = &cobra.Command{
	Use:   "create-source <header>",
	Short: "Create the source file matching a header",
	Long: `Create a source file for a header that has none. The file includes the header
and opens the header's namespaces. With --definitions it also gets empty
definitions for the undefined functions of the header.

The folder defaults to the source folder closest to the header, and the
extension to the one used by the files already in that folder.

Examples:
  cppgen create-source include/widget.h
  cppgen create-source include/widget.h --folder src --ext cc --definitions`,
	Args: cobra.ExactArgs(1),
	RunE: runCreateSource,
}

var (
	createFolder      string
	createExtension   string
	createDefinitions bool
)

func init() {
	rootCmd.AddCommand(switchCmd)
	rootCmd.AddCommand(addHeaderGuardCmd)
	rootCmd.AddCommand(addIncludeCmd)
	rootCmd.AddCommand(createSourceCmd)

	createSourceCmd.Flags().StringVar(&createFolder, "folder", "", "Folder of the new file")
	createSourceCmd.Flags().StringVar(&createExtension, "ext", "", "Extension of the new file, without the dot")
	createSourceCmd.Flags().BoolVar(&createDefinitions, "definitions", false, "Add definitions for undefined functions")
}

func runSwitch(cmd *cobra.Command, args []string) error {
	path, err := parsePath(args[0])
	if err != nil {
		return err
	}

	ctx, s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	match, err := s.Generator.SwitchHeaderSource(ctx, path)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), output.RelPath(s.Root(), match))
	return nil
}

func runAddHeaderGuard(cmd *cobra.Command, args []string) error {
	path, err := parsePath(args[0])
	if err != nil {
		return err
	}

	ctx, s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.Generator.AddHeaderGuard(ctx, path)
	if err != nil {
		return err
	}
	return finishEdit(cmd, s, "add-header-guard", res, nil, nil)
}

func runAddInclude(cmd *cobra.Command, args []string) error {
	path, err := parsePath(args[0])
	if err != nil {
		return err
	}

	ctx, s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.Generator.AddInclude(ctx, path, args[1])
	if err != nil {
		return err
	}
	return finishEdit(cmd, s, "add-include", res, nil, nil)
}

func runCreateSource(cmd *cobra.Command, args []string) error {
	header, err := parsePath(args[0])
	if err != nil {
		return err
	}
	folder := createFolder
	if folder != "" {
		if folder, err = parsePath(folder); err != nil {
			return err
		}
	}

	ctx, s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.Generator.CreateSourceFile(ctx, generate.SourceFileRequest{
		Header:      header,
		Folder:      folder,
		Extension:   createExtension,
		Definitions: createDefinitions,
	})
	if err != nil {
		return err
	}
	return finishEdit(cmd, s, "create-source", res.Result, nil, nil)
}
