// File: cmd/sitecheck/main.go
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/xkilldash9x/sitecheck/cmd"
	"github.com/xkilldash9x/sitecheck/internal/observability"
)

const panicLogFile = "panic.log"

const banner = `
  sitecheck  ::  Recode Solutions homepage suite
  type 'run', 'list', 'lint' or 'help'; 'exit' to quit

`

// Swappable in tests.
var (
	osWriteFile = os.WriteFile
	osExit      = os.Exit
)

func main() {
	defer handlePanic()

	// Cancelled on SIGINT or SIGTERM; a running suite stops between steps.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(os.Args) > 1 {
		osExit(exitCode(cmd.Execute(ctx)))
		return
	}

	fmt.Print(banner)
	if err := interactive(ctx, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "Error reading from stdin:", err)
		osExit(1)
	}
}

// exitCode maps the result of a command to the process exit status. An
// interrupted run exits cleanly.
func exitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return 0
	default:
		return 1
	}
}

// interactive reads commands line by line until EOF, "exit" or "quit".
func interactive(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "sitecheck > ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		executeInteractiveCommand(ctx, line, out)
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	fmt.Fprintln(out, "Exiting sitecheck.")
	return nil
}

// executeInteractiveCommand runs one line against a fresh command tree so
// flags never leak between commands. A panic is reported, not fatal.
func executeInteractiveCommand(ctx context.Context, line string, out io.Writer) {
	rootCmd := cmd.NewRootCommand()
	rootCmd.SetArgs(strings.Fields(line))
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(out, "Error: command panicked: %v\n", r)
		}
	}()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
	}
}

// handlePanic records a crash to panic.log before exiting.
func handlePanic() {
	r := recover()
	if r == nil {
		return
	}
	observability.Sync()

	panicMessage := fmt.Sprintf("panic: %v\n\n%s", r, debug.Stack())
	if err := osWriteFile(panicLogFile, []byte(panicMessage), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: Failed to write panic log: %v\n", err)
		fmt.Fprintf(os.Stderr, "Panic details:\n%s\n", panicMessage)
		osExit(2)
		return
	}
	fmt.Fprintf(os.Stderr, "\nsitecheck crashed. Details logged to %s\n", panicLogFile)
	osExit(2)
}
