package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/dmitrijs2005/insightdesk/internal/client/client"
)

func stubInputs(t *testing.T, username string, password []byte) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, _ io.Writer, _ string) (string, error) { return username, nil }
	getPassword = func(_ io.Writer) ([]byte, error) { return password, nil }
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

func silencePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		var b bytes.Buffer
		for i, v := range a {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(v.(string))
		}
		lines = append(lines, b.String())
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

type fakeAuth struct {
	loginEmail string
	loginPass  []byte
	loginRet   *client.Session
	loginErr   error

	logoutCalled bool
	logoutErr    error

	whoRet *client.Session
	whoErr error

	cachedRet *client.Session
	cachedErr error

	providers []client.Provider
	provErr   error

	pingErr error
}

func (f *fakeAuth) Login(_ context.Context, email string, pass []byte) (*client.Session, error) {
	f.loginEmail, f.loginPass = email, append([]byte(nil), pass...)
	return f.loginRet, f.loginErr
}

func (f *fakeAuth) Logout(context.Context) error {
	f.logoutCalled = true
	return f.logoutErr
}

func (f *fakeAuth) WhoAmI(context.Context) (*client.Session, error) { return f.whoRet, f.whoErr }

func (f *fakeAuth) CachedSession(context.Context) (*client.Session, error) {
	if f.cachedRet == nil && f.cachedErr == nil {
		return nil, client.ErrNotSignedIn
	}
	return f.cachedRet, f.cachedErr
}

func (f *fakeAuth) Providers(context.Context) ([]client.Provider, error) {
	return f.providers, f.provErr
}

func (f *fakeAuth) SignInURL(p string) string { return "http://srv/api/auth/signin/" + p }

func (f *fakeAuth) Ping(context.Context) error { return f.pingErr }

type fakeContent struct {
	imagePath string
	input     string
	ret       string
	err       error
	last      string
}

func (f *fakeContent) DescribeImage(_ context.Context, path string) (string, error) {
	f.imagePath = path
	return f.ret, f.err
}

func (f *fakeContent) Summarize(_ context.Context, input string) (string, error) {
	f.input = input
	return f.ret, f.err
}

func (f *fakeContent) LastResult(context.Context) (string, error) { return f.last, nil }

func newTestApp(auth *fakeAuth, content *fakeContent) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	return &App{authService: auth, contentService: content, out: &out}, &out
}

func alice() *client.Session {
	return &client.Session{Token: "t", User: client.User{ID: "1", Name: "Alice", Email: "alice@example.com"}}
}
