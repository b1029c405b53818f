package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/dmitrijs2005/insightdesk/internal/common"
)

// CaptionClient forwards images to a standalone captioning service that
// accepts multipart field "image" and answers {"description"} or {"error"}.
type CaptionClient struct {
	httpClient *http.Client
	endpoint   string
}

func NewCaptionClient(endpoint string, timeout time.Duration) *CaptionClient {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &CaptionClient{httpClient: &http.Client{Timeout: timeout}, endpoint: endpoint}
}

type captionResponse struct {
	Description string `json:"description"`
	Error       string `json:"error"`
}

// Describe posts image and returns the caption. Non-2xx answers become
// *common.UpstreamError with the service's status and error text.
func (c *CaptionClient) Describe(ctx context.Context, image []byte, mimeType string) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="image"`)
	h.Set("Content-Type", mimeType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return "", fmt.Errorf("multipart: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return "", fmt.Errorf("multipart: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("caption request: %w", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var out captionResponse
	decodeErr := json.Unmarshal(b, &out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := out.Error
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", &common.UpstreamError{StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode response: %w", decodeErr)
	}
	if out.Description == "" {
		return "", errors.New("caption service returned no description")
	}

	return out.Description, nil
}
