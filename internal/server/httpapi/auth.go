package httpapi

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/insightdesk/internal/common"
)

const (
	stateCookieName = "insightdesk_oauth_state"
	stateMaxAge     = 300
	signInBodyLimit = 64 << 10

	dashboardPath    = "/dashboard"
	signInFailedPath = "/?error=OAuthSignin"
)

type signInRequest struct {
	Email    string `json:"email" validate:"max=320"`
	Password string `json:"password" validate:"max=1024"`
}

func (s *Server) providers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"providers": s.gateway.Providers()})
}

func isJSON(r *http.Request) bool {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mt == "application/json"
}

func (s *Server) decodeSignIn(r *http.Request) (*signInRequest, error) {
	var req signInRequest
	if isJSON(r) {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, err
		}
	} else {
		// covers urlencoded bodies too; browsers send FormData as multipart
		if err := r.ParseMultipartForm(signInBodyLimit); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return nil, err
		}
		req.Email = r.PostForm.Get("email")
		req.Password = r.PostForm.Get("password")
	}
	if err := s.validate.Struct(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// signIn runs the credential flow. Every reject, whatever the reason, gets
// the same 401 body.
func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, signInBodyLimit)

	req, err := s.decodeSignIn(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := s.gateway.SignInWithCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, MsgInvalidCredentials)
			return
		}
		writeServiceError(w, err, false)
		return
	}

	s.setSessionCookie(w, res.Token, res.ExpiresAt)
	writeJSON(w, http.StatusOK, signInResponse{Token: res.Token, ExpiresAt: res.ExpiresAt, User: toUserView(res.Account)})
}

func (s *Server) beginFederated(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	state, err := common.MakeRandHexString(16)
	if err != nil {
		writeServiceError(w, err, false)
		return
	}

	authURL, err := s.gateway.BeginFederated(provider, state)
	if err != nil {
		writeServiceError(w, err, false)
		return
	}

	session, _ := s.stateStore.Get(r, stateCookieName)
	session.Values["state"] = state
	session.Values["provider"] = provider
	session.Options.MaxAge = stateMaxAge
	if err := session.Save(r, w); err != nil {
		s.logger.Error(r.Context(), "save oauth state", "error", err)
		writeServiceError(w, err, false)
		return
	}

	http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
}

func (s *Server) callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider := chi.URLParam(r, "provider")
	q := r.URL.Query()

	session, _ := s.stateStore.Get(r, stateCookieName)
	savedState, _ := session.Values["state"].(string)
	savedProvider, _ := session.Values["provider"].(string)

	session.Options.MaxAge = -1
	_ = session.Save(r, w)

	if e := q.Get("error"); e != "" {
		s.logger.Info(ctx, "provider returned error", "provider", provider, "error", e)
		http.Redirect(w, r, signInFailedPath, http.StatusSeeOther)
		return
	}
	if savedState == "" || savedState != q.Get("state") || savedProvider != provider {
		s.logger.Warn(ctx, "oauth state mismatch", "provider", provider)
		http.Redirect(w, r, signInFailedPath, http.StatusSeeOther)
		return
	}
	code := q.Get("code")
	if code == "" {
		http.Redirect(w, r, signInFailedPath, http.StatusSeeOther)
		return
	}

	res, err := s.gateway.CompleteFederated(ctx, provider, code)
	if err != nil {
		http.Redirect(w, r, signInFailedPath, http.StatusSeeOther)
		return
	}

	s.setSessionCookie(w, res.Token, res.ExpiresAt)
	http.Redirect(w, r, dashboardPath, http.StatusSeeOther)
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) {
	account, _ := AccountFromContext(r.Context())

	exp, err := s.sessions.ExpiresAt(tokenFromContext(r.Context()))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{User: toUserView(account), Expires: exp})
}

func (s *Server) signOut(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, struct{}{})
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
