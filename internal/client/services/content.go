package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/insightdesk/internal/client/client"
	"github.com/dmitrijs2005/insightdesk/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/insightdesk/internal/filex"
)

// ContentService sends images and documents to the relay and remembers the
// last result.
type ContentService interface {
	DescribeImage(ctx context.Context, path string) (string, error)
	Summarize(ctx context.Context, input string) (string, error)
	LastResult(ctx context.Context) (string, error)
}

type contentService struct {
	client client.Client
	db     *sql.DB
}

func NewContentService(c client.Client, db *sql.DB) ContentService {
	return &contentService{client: c, db: db}
}

func (s *contentService) token(ctx context.Context) (string, error) {
	t, err := metadata.NewSQLiteRepository(s.db).Get(ctx, metadata.KeyToken)
	if err != nil {
		return "", err
	}
	if len(t) == 0 {
		return "", client.ErrNotSignedIn
	}
	return string(t), nil
}

func (s *contentService) DescribeImage(ctx context.Context, path string) (string, error) {
	token, err := s.token(ctx)
	if err != nil {
		return "", err
	}

	path, err = filex.ExpandHome(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	out, err := s.client.DescribeImage(ctx, token, filepath.Base(path), data)
	if err != nil {
		return "", err
	}
	return out, s.remember(ctx, out)
}

// Summarize treats input as a file when it names a readable regular file,
// otherwise sends it as text (the server recognises URLs).
func (s *contentService) Summarize(ctx context.Context, input string) (string, error) {
	token, err := s.token(ctx)
	if err != nil {
		return "", err
	}

	var out string
	if path, ok := asFile(input); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read document: %w", err)
		}
		out, err = s.client.SummarizeFile(ctx, token, filepath.Base(path), data)
		if err != nil {
			return "", err
		}
	} else {
		out, err = s.client.Summarize(ctx, token, input)
		if err != nil {
			return "", err
		}
	}

	return out, s.remember(ctx, out)
}

func asFile(input string) (string, bool) {
	path, err := filex.ExpandHome(input)
	if err != nil {
		return "", false
	}
	fi, err := os.Stat(path)
	if err != nil || !fi.Mode().IsRegular() {
		return "", false
	}
	return path, true
}

func (s *contentService) remember(ctx context.Context, out string) error {
	return metadata.NewSQLiteRepository(s.db).Set(ctx, metadata.KeyLastResult, []byte(out))
}

func (s *contentService) LastResult(ctx context.Context) (string, error) {
	v, err := metadata.NewSQLiteRepository(s.db).Get(ctx, metadata.KeyLastResult)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", errors.New("no result yet")
	}
	return string(v), nil
}
