package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/insightdesk/internal/server/services"
)

type textRequest struct {
	Text string `json:"text"`
}

// readFormFile returns the named part, or nil when it is absent.
func readFormFile(r *http.Request, field string) ([]byte, string, string, error) {
	f, hdr, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, "", "", nil
		}
		return nil, "", "", err
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, "", "", err
	}
	return b, hdr.Filename, hdr.Header.Get("Content-Type"), nil
}

func (s *Server) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	err := r.ParseMultipartForm(s.maxUpload)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}
	return nil
}

func accountID(r *http.Request) string {
	if a, ok := AccountFromContext(r.Context()); ok {
		return a.ID
	}
	return ""
}

func (s *Server) imageAnalysis(w http.ResponseWriter, r *http.Request) {
	if err := s.parseMultipart(w, r); err != nil {
		s.relayError(w, r, err)
		return
	}

	file, name, contentType, err := readFormFile(r, "image")
	if err != nil {
		s.relayError(w, r, err)
		return
	}

	description, err := s.relay.Relay(r.Context(), services.RelayRequest{
		Kind:        services.KindImage,
		AccountID:   accountID(r),
		File:        file,
		FileName:    name,
		ContentType: contentType,
	})
	if err != nil {
		s.relayError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"description": description})
}

func (s *Server) summarize(w http.ResponseWriter, r *http.Request) {
	req := services.RelayRequest{Kind: services.KindDocument, AccountID: accountID(r)}

	if isJSON(r) {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
		var body textRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				s.relayError(w, r, err)
				return
			}
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		req.Text = body.Text
	} else {
		if err := s.parseMultipart(w, r); err != nil {
			s.relayError(w, r, err)
			return
		}
		file, name, contentType, err := readFormFile(r, "file")
		if err != nil {
			s.relayError(w, r, err)
			return
		}
		req.File, req.FileName, req.ContentType = file, name, contentType
		req.Text = r.FormValue("text")
	}

	summary, err := s.relay.Relay(r.Context(), req)
	if err != nil {
		s.relayError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

func (s *Server) relayError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error(r.Context(), "relay failed", "error", err)
	writeServiceError(w, err, true)
}
