package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/insightdesk/internal/common"
	"github.com/dmitrijs2005/insightdesk/internal/server/models"
)

// MsgInvalidCredentials is the only text a client ever sees for a rejected
// credential sign-in.
const MsgInvalidCredentials = "Invalid email or password."

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type userView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func toUserView(a *models.Account) userView {
	return userView{ID: a.ID, Name: a.Name, Email: a.Email}
}

type signInResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      userView  `json:"user"`
}

type sessionResponse struct {
	User    userView  `json:"user"`
	Expires time.Time `json:"expires"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps a service error onto a status and body. Details of
// unexpected errors are only exposed when withDetails is set.
func writeServiceError(w http.ResponseWriter, err error, withDetails bool) {
	var ve *common.ValidationError
	var ue *common.UpstreamError
	var mbe *http.MaxBytesError

	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Message)
	case errors.As(err, &ue):
		status := ue.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		writeError(w, status, ue.Message)
	case errors.As(err, &mbe):
		writeError(w, http.StatusRequestEntityTooLarge, "File too large.")
	case errors.Is(err, common.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, MsgInvalidCredentials)
	case errors.Is(err, common.ErrorUnauthorized):
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "Not Found")
	default:
		resp := errorResponse{Error: "Internal Server Error"}
		if withDetails {
			resp.Details = err.Error()
		}
		writeJSON(w, http.StatusInternalServerError, resp)
	}
}
