package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Providers(ctx context.Context) error
	SignInURL(ctx context.Context, provider string) error
	Image(ctx context.Context, path string) error
	Summarize(ctx context.Context, input string) error
	Last(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the InsightDesk CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. The rest of the line is passed
// as a single argument, so "summarize" accepts free text with spaces. The
// loop exits on scanner EOF or when the user types "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers report
// their own errors and record them as the last error.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	// pasted documents can be long
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for {
		printlnFn(fmt.Sprintf("id> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: image <path>, summarize <text|url|file>, last, whoami, providers, signin-url <provider>, logout, exit")
			} else {
				printlnFn("Available commands: login, providers, signin-url <provider>, whoami, last, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "providers":
			_ = a.Providers(ctx)

		case "signin-url":
			_ = a.SignInURL(ctx, arg)

		case "image":
			_ = a.Image(ctx, arg)

		case "summarize":
			_ = a.Summarize(ctx, arg)

		case "last":
			_ = a.Last(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
