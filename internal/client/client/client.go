package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/insightdesk/internal/common"
)

// Client is the CLI's view of the InsightDesk HTTP API.
type Client interface {
	Ping(ctx context.Context) error
	Providers(ctx context.Context) ([]Provider, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	Session(ctx context.Context, token string) (*Session, error)
	SignOut(ctx context.Context, token string) error
	SignInURL(provider string) string
	DescribeImage(ctx context.Context, token, filename string, data []byte) (string, error)
	Summarize(ctx context.Context, token, text string) (string, error)
	SummarizeFile(ctx context.Context, token, filename string, data []byte) (string, error)
}

type Provider struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Session struct {
	Token     string
	ExpiresAt time.Time
	User      User
}

// HTTPClient implements Client over net/http.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

func (c *HTTPClient) do(ctx context.Context, method, path, token, contentType string, body io.Reader, dst any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&eb)
		if eb.Error == "" {
			eb.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: eb.Error, Details: eb.Details}
	}

	if dst == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func jsonBody(v any) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", "", "", nil, nil)
}

func (c *HTTPClient) Providers(ctx context.Context) ([]Provider, error) {
	var out struct {
		Providers []Provider `json:"providers"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/providers", "", "", nil, &out); err != nil {
		return nil, err
	}
	return out.Providers, nil
}

func (c *HTTPClient) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var out struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
		User      User      `json:"user"`
	}
	body := jsonBody(map[string]string{"email": email, "password": password})
	if err := c.do(ctx, http.MethodPost, "/api/auth/signin", "", "application/json", body, &out); err != nil {
		return nil, err
	}
	return &Session{Token: out.Token, ExpiresAt: out.ExpiresAt, User: out.User}, nil
}

func (c *HTTPClient) Session(ctx context.Context, token string) (*Session, error) {
	var out struct {
		User    User      `json:"user"`
		Expires time.Time `json:"expires"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/session", token, "", nil, &out); err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: out.Expires, User: out.User}, nil
}

func (c *HTTPClient) SignOut(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/signout", token, "", nil, nil)
}

// SignInURL is the browser entry point for a federated provider.
func (c *HTTPClient) SignInURL(provider string) string {
	return c.baseURL + "/api/auth/signin/" + url.PathEscape(provider)
}

func multipartFile(field, filename string, data []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	w, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := w.Write(data); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func (c *HTTPClient) DescribeImage(ctx context.Context, token, filename string, data []byte) (string, error) {
	body, ct, err := multipartFile("image", filename, data)
	if err != nil {
		return "", err
	}
	var out struct {
		Description string `json:"description"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/image-analysis", token, ct, body, &out); err != nil {
		return "", err
	}
	return out.Description, nil
}

func (c *HTTPClient) Summarize(ctx context.Context, token, text string) (string, error) {
	var out struct {
		Summary string `json:"summary"`
	}
	body := jsonBody(map[string]string{"text": text})
	if err := c.do(ctx, http.MethodPost, "/api/summarize", token, "application/json", body, &out); err != nil {
		return "", err
	}
	return out.Summary, nil
}

func (c *HTTPClient) SummarizeFile(ctx context.Context, token, filename string, data []byte) (string, error) {
	body, ct, err := multipartFile("file", filename, data)
	if err != nil {
		return "", err
	}
	var out struct {
		Summary string `json:"summary"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/summarize", token, ct, body, &out); err != nil {
		return "", err
	}
	return out.Summary, nil
}
