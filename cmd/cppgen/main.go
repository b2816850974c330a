// Package main is the entry point for the cppgen CLI tool.
package main

import (
	"github.com/hargabyte/cppgen/internal/cmd"
)

func main() {
	cmd.Execute()
}
