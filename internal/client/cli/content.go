package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/insightdesk/internal/client/client"
)

func (a *App) Image(ctx context.Context, path string) error {
	if path == "" {
		printlnFn("Usage: image <path>")
		return nil
	}
	out, err := a.contentService.DescribeImage(ctx, path)
	if err != nil {
		return a.fail(err)
	}
	a.succeed(out)
	return nil
}

func (a *App) Summarize(ctx context.Context, input string) error {
	if input == "" {
		printlnFn("Usage: summarize <text | url | file>")
		return nil
	}
	out, err := a.contentService.Summarize(ctx, input)
	if err != nil {
		return a.fail(err)
	}
	a.succeed(out)
	return nil
}

// Last shows the outcome of the previous command.
func (a *App) Last(ctx context.Context) error {
	a.mu.Lock()
	result, lastErr := a.lastResult, a.lastErr
	a.mu.Unlock()

	if result == "" {
		stored, err := a.contentService.LastResult(ctx)
		if err == nil {
			result = stored
		}
	}

	if result != "" {
		fmt.Fprintln(a.out, "Last result:\n"+result)
	}
	if lastErr != "" {
		fmt.Fprintln(a.out, "Last error: "+lastErr)
	}
	if result == "" && lastErr == "" {
		fmt.Fprintln(a.out, "Nothing yet")
	}
	return nil
}

func (a *App) succeed(msg string) {
	a.mu.Lock()
	a.lastResult, a.lastErr = msg, ""
	a.mu.Unlock()
	fmt.Fprintln(a.out, msg)
}

// fail records and prints err in user terms and returns it unchanged.
func (a *App) fail(err error) error {
	msg := errorMessage(err)
	a.mu.Lock()
	a.lastErr = msg
	a.mu.Unlock()
	fmt.Fprintln(a.out, "Error: "+msg)
	return err
}

func errorMessage(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, client.ErrNotSignedIn):
		return "not signed in, use 'login' first"
	case errors.As(err, &apiErr):
		if apiErr.Details != "" {
			return apiErr.Message + " " + apiErr.Details
		}
		return apiErr.Message
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable"
	default:
		return err.Error()
	}
}
