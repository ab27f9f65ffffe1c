// Package cli implements the majin command line: the HTTP server and a few
// operator commands that work directly against the model registry.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

// MainWithArgs runs the command line with args and returns the process exit
// code. Output goes to stdout and stderr. SIGINT and SIGTERM cancel the
// command's context.
func MainWithArgs(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, args, os.Stdout, os.Stderr)
}

// Main returns an exit code (0 for success, non-zero on error) for use by cmd/majin.
func Main() int { return MainWithArgs(os.Args[1:]) }

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := buildRootCmd(&globals{})
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "error:", err.Error())
		return 1
	}
	return 0
}

// splitCSV splits a comma separated flag value, dropping blanks.
func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
