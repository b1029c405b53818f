package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/insightdesk/internal/common"
	"github.com/dmitrijs2005/insightdesk/internal/server/services"
)

func jsonSignIn(email, password string) *http.Request {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == common.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestSignIn_RejectsLookIdentical(t *testing.T) {
	f := newFixture(t)

	cases := map[string]*http.Request{
		"unknown account": jsonSignIn("nobody@example.com", alicePassword),
		"wrong password":  jsonSignIn("alice@example.com", "wrong"),
		"no password set": jsonSignIn("fed@example.com", "anything"),
		"empty password":  jsonSignIn("alice@example.com", ""),
		"demo when off":   jsonSignIn(services.DemoEmail, services.DemoPassword),
	}

	want := `{"error":"Invalid email or password."}` + "\n"
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			rec := f.do(req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, want, rec.Body.String())
			assert.Nil(t, sessionCookie(rec))
		})
	}
}

func TestSignIn_JSON(t *testing.T) {
	f := newFixture(t)

	rec := f.do(jsonSignIn("Alice@Example.com", alicePassword))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp signInResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, userView{ID: "a1", Name: "Alice", Email: "alice@example.com"}, resp.User)

	c := sessionCookie(rec)
	require.NotNil(t, c)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, resp.Token, c.Value)

	acc, err := f.issuer.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "a1", acc.ID)
}

func TestSignIn_Form(t *testing.T) {
	f := newFixture(t)

	form := url.Values{"email": {"alice@example.com"}, "password": {alicePassword}}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := f.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, sessionCookie(rec))
}

func TestSignIn_Multipart(t *testing.T) {
	f := newFixture(t)

	req := multipartRequest(t, "/api/auth/signin", "",
		part{field: "email", data: []byte("alice@example.com")},
		part{field: "password", data: []byte(alicePassword)},
	)

	rec := f.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotNil(t, sessionCookie(rec))

	var resp signInResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "alice@example.com", resp.User.Email)
}

func TestSignIn_MultipartWrongPassword(t *testing.T) {
	f := newFixture(t)

	rec := f.do(multipartRequest(t, "/api/auth/signin", "",
		part{field: "email", data: []byte("alice@example.com")},
		part{field: "password", data: []byte("wrong")},
	))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, `{"error":"Invalid email or password."}`+"\n", rec.Body.String())
}

func TestSignIn_DemoAccount(t *testing.T) {
	f := buildFixture(t, true)

	rec := f.do(jsonSignIn(services.DemoEmail, services.DemoPassword))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp signInResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, services.DemoAccountID, resp.User.ID)
	assert.Equal(t, services.DemoName, resp.User.Name)
}

func TestSignIn_MalformedBody(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := f.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(jsonSignIn(strings.Repeat("a", 400)+"@example.com", "pw"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProviders(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/auth/providers", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Providers []services.ProviderInfo `json:"providers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []services.ProviderInfo{
		{ID: "credentials", Name: "Email", Type: "credentials"},
		{ID: "github", Name: "GitHub", Type: "oauth"},
	}, resp.Providers)
}

func TestSession(t *testing.T) {
	f := newFixture(t)
	tok := f.token(t)

	t.Run("bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := f.do(req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp sessionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "a1", resp.User.ID)
		assert.False(t, resp.Expires.IsZero())
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
		req.AddCookie(&http.Cookie{Name: common.SessionCookieName, Value: tok})
		rec := f.do(req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing", func(t *testing.T) {
		rec := f.do(httptest.NewRequest(http.MethodGet, "/api/auth/session", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
	})

	t.Run("tampered", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
		req.Header.Set("Authorization", "Bearer "+tok+"x")
		rec := f.do(req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestSignOut(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodPost, "/api/auth/signout", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())

	c := sessionCookie(rec)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.Less(t, c.MaxAge, 0)
}

func beginFlow(t *testing.T, f *fixture) (state string, cookies []*http.Cookie) {
	t.Helper()
	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/auth/signin/github", nil))
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "github.test", loc.Host)
	state = loc.Query().Get("state")
	require.Len(t, state, 32)

	return state, rec.Result().Cookies()
}

func callbackRequest(query string, cookies []*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/auth/callback/github?"+query, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func TestFederatedFlow(t *testing.T) {
	f := newFixture(t)
	state, cookies := beginFlow(t, f)

	rec := f.do(callbackRequest("code=42&state="+state, cookies))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	c := sessionCookie(rec)
	require.NotNil(t, c)
	acc, err := f.issuer.Verify(c.Value)
	require.NoError(t, err)
	assert.Equal(t, "fed-42", acc.ID)
	assert.Equal(t, "octo@example.com", acc.Email)
}

func TestFederatedFlow_Failures(t *testing.T) {
	tests := []struct {
		name  string
		query func(state string) string
		noJar bool
		setup func(f *fixture)
	}{
		{name: "state mismatch", query: func(string) string { return "code=1&state=forged" }},
		{name: "no state cookie", query: func(s string) string { return "code=1&state=" + s }, noJar: true},
		{name: "provider error", query: func(s string) string { return "error=access_denied&state=" + s }},
		{name: "missing code", query: func(s string) string { return "state=" + s }},
		{
			name:  "exchange fails",
			query: func(s string) string { return "code=1&state=" + s },
			setup: func(f *fixture) { f.provider.err = errors.New("bad_verification_code") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}
			state, cookies := beginFlow(t, f)
			if tt.noJar {
				cookies = nil
			}

			rec := f.do(callbackRequest(tt.query(state), cookies))
			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, "/?error=OAuthSignin", rec.Header().Get("Location"))
			assert.Nil(t, sessionCookie(rec))
		})
	}
}

func TestBeginFederated_UnknownProvider(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/auth/signin/myspace", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
