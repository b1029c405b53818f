package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/insightdesk/internal/client/client"
	"github.com/dmitrijs2005/insightdesk/internal/promptx"
)

// getSimpleText and getPassword point to the interactive input helpers and
// can be swapped in tests.
var getSimpleText = promptx.Line
var getPassword = func(w io.Writer) ([]byte, error) {
	return promptx.Password(w, "Enter password: ")
}

func displayName(u client.User) string {
	if u.Name != "" && u.Name != u.Email {
		return fmt.Sprintf("%s <%s>", u.Name, u.Email)
	}
	return u.Email
}

// Login prompts for email and password and signs in with credentials.
// The password is wiped by the auth service.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, a.out, "Enter email")
	if err != nil {
		return a.fail(err)
	}

	password, err := getPassword(a.out)
	if err != nil {
		return a.fail(err)
	}

	s, err := a.authService.Login(ctx, email, password)
	if err != nil {
		return a.fail(err)
	}

	a.setUser(s.User.Email)
	a.succeed(fmt.Sprintf("Signed in as %s", displayName(s.User)))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return a.fail(err)
	}
	a.setUser("")
	a.succeed("Signed out")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	s, err := a.authService.WhoAmI(ctx)
	if err != nil {
		if errors.Is(err, client.ErrNotSignedIn) {
			a.setUser("")
		}
		return a.fail(err)
	}

	a.setUser(s.User.Email)
	msg := displayName(s.User)
	if !s.ExpiresAt.IsZero() {
		msg += fmt.Sprintf(" (session expires %s)", s.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	a.succeed(msg)
	return nil
}

func (a *App) Providers(ctx context.Context) error {
	ps, err := a.authService.Providers(ctx)
	if err != nil {
		return a.fail(err)
	}

	var b strings.Builder
	for i, p := range ps {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%-10s %s (%s)", p.ID, p.Name, p.Type)
	}
	a.succeed(b.String())
	return nil
}

// SignInURL prints the browser address that starts a federated sign-in.
// The resulting session lives in the browser, not in the CLI.
func (a *App) SignInURL(ctx context.Context, provider string) error {
	if provider == "" {
		printlnFn("Usage: signin-url <provider>")
		return nil
	}
	a.succeed("Open in a browser: " + a.authService.SignInURL(provider))
	return nil
}
