package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/insightdesk/internal/common"
	"github.com/dmitrijs2005/insightdesk/internal/logging"
	"github.com/dmitrijs2005/insightdesk/internal/netx"
	"github.com/dmitrijs2005/insightdesk/internal/server/archive"
	"github.com/dmitrijs2005/insightdesk/internal/server/extract"
)

// Kind selects the relay path.
type Kind string

const (
	KindImage    Kind = "image"
	KindDocument Kind = "document"
)

// Client-facing rejects. Messages are returned verbatim.
var (
	ErrNoImage   = common.NewValidationError("No image file provided.")
	ErrNoContent = common.NewValidationError("No content provided.")
	ErrEmptyText = common.NewValidationError("Could not extract text from the provided input.")
)

// ImageDescriber turns an image into a description.
type ImageDescriber interface {
	Describe(ctx context.Context, image []byte, mimeType string) (string, error)
}

// TextSummarizer turns text into a summary.
type TextSummarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// PageFetcher retrieves the text behind a URL.
type PageFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// RelayRequest is one user payload.
type RelayRequest struct {
	Kind        Kind
	AccountID   string
	File        []byte
	FileName    string
	ContentType string
	Text        string
}

// DefaultArchiveTimeout caps how long a relay response waits on the archive.
const DefaultArchiveTimeout = 3 * time.Second

// RelayService forwards images and documents to the model backends.
type RelayService struct {
	describer      ImageDescriber
	summarizer     TextSummarizer
	fetcher        PageFetcher
	extractor      extract.Extractor
	archiver       archive.Archiver
	archiveTimeout time.Duration
	logger         logging.Logger
}

func NewRelayService(d ImageDescriber, s TextSummarizer, f PageFetcher, e extract.Extractor, a archive.Archiver, logger logging.Logger) *RelayService {
	if a == nil {
		a = archive.Nop{}
	}
	return &RelayService{
		describer:      d,
		summarizer:     s,
		fetcher:        f,
		extractor:      e,
		archiver:       a,
		archiveTimeout: DefaultArchiveTimeout,
		logger:         logger,
	}
}

// Relay returns the model output for req. Validation failures are
// *common.ValidationError, upstream failures *common.UpstreamError.
func (s *RelayService) Relay(ctx context.Context, req RelayRequest) (string, error) {
	ctx = logging.ContextWith(ctx, "kind", string(req.Kind))

	switch req.Kind {
	case KindImage:
		return s.describe(ctx, req)
	case KindDocument:
		return s.summarize(ctx, req)
	default:
		return "", fmt.Errorf("%w: unknown relay kind %q", common.ErrorInternal, req.Kind)
	}
}

func (s *RelayService) describe(ctx context.Context, req RelayRequest) (string, error) {
	if len(req.File) == 0 {
		return "", ErrNoImage
	}

	mime := req.ContentType
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(req.File)
	}

	out, err := s.describer.Describe(ctx, req.File, mime)
	if err != nil {
		return "", err
	}

	s.archive(ctx, req.AccountID, KindImage, mime, req.File)
	return out, nil
}

func (s *RelayService) summarize(ctx context.Context, req RelayRequest) (string, error) {
	text, contentType, payload, err := s.resolveText(ctx, req)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}

	out, err := s.summarizer.Summarize(ctx, text)
	if err != nil {
		return "", err
	}

	s.archive(ctx, req.AccountID, KindDocument, contentType, payload)
	return out, nil
}

// resolveText applies the input precedence: uploaded file, then URL, then
// pasted text.
func (s *RelayService) resolveText(ctx context.Context, req RelayRequest) (text, contentType string, payload []byte, err error) {
	if len(req.File) > 0 {
		contentType = http.DetectContentType(req.File)
		switch {
		case extract.IsPDF(req.File):
			text, err = s.extractor.Extract(ctx, req.File)
			if err != nil {
				return "", "", nil, fmt.Errorf("%w: extract %s: %v", common.ErrorInternal, req.FileName, err)
			}
			return text, "application/pdf", req.File, nil
		case strings.HasPrefix(contentType, "text/plain"):
			return string(req.File), contentType, req.File, nil
		default:
			return "", "", nil, common.NewValidationError("Unsupported file type.")
		}
	}

	raw := strings.TrimSpace(req.Text)
	if raw == "" {
		return "", "", nil, ErrNoContent
	}

	if netx.IsURL(raw) {
		text, err = s.fetcher.FetchText(ctx, raw)
		if err != nil {
			return "", "", nil, err
		}
		s.logger.Debug(ctx, "fetched url content", "url", raw, "chars", len(text))
		return text, "text/plain; charset=utf-8", []byte(text), nil
	}

	return req.Text, "text/plain; charset=utf-8", []byte(req.Text), nil
}

// archive stores the payload after a successful relay. The upload keeps the
// request values but not its cancellation, so a client hanging up does not
// abort it; the timeout bounds the wait instead.
func (s *RelayService) archive(ctx context.Context, accountID string, kind Kind, contentType string, body []byte) {
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.archiveTimeout)
	defer cancel()

	key, err := s.archiver.Archive(actx, archive.Item{
		Kind:        string(kind),
		AccountID:   accountID,
		ContentType: contentType,
		Body:        body,
	})
	if err != nil {
		s.logger.Warn(ctx, "archive payload", "error", err)
		return
	}
	if key != "" {
		s.logger.Debug(ctx, "payload archived", "key", key)
	}
}
