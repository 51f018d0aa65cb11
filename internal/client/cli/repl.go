package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. *App satisfies it.
type execIface interface {
	hasSigner() bool
	Add(ctx context.Context) error
	List(ctx context.Context) error
	Show(ctx context.Context) error
	Status(ctx context.Context) error
}

// runREPL reads commands from reader until EOF, exit or quit, or until ctx
// ends. Handlers report their own errors, so they are ignored here.
//
// The REPL and the command prompts share one bufio.Reader, so lines typed
// in answer to a prompt are never swallowed by the loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("diary %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch cmd := parts[0]; cmd {
		case "help":
			if a.hasSigner() {
				printlnFn("Available commands: add, (l)ist, show, status, exit")
			} else {
				printlnFn("Available commands: show, status, exit (no signing key configured)")
			}

		case "add":
			_ = a.Add(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "show":
			_ = a.Show(ctx)

		case "status":
			_ = a.Status(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
