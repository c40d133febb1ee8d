package acquirer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/BerylCAtieno/paper-genie/internal/models"
)

var (
	ErrNoFile       = errors.New("uploaded file is empty")
	ErrInvalidURL   = errors.New("URL must be an absolute http or https address")
	ErrTooLarge     = errors.New("document exceeds the size limit")
	ErrUnknownInput = errors.New("unknown document source")
)

// StatusError reports a non-success HTTP status from the remote server.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %s", e.Status)
}

// Acquirer turns a DocumentSource into raw PDF bytes.
type Acquirer interface {
	Acquire(ctx context.Context, src *models.DocumentSource) ([]byte, error)
}

type httpAcquirer struct {
	client   *http.Client
	maxBytes int64
}

// New returns an Acquirer that downloads URL sources with client. A nil
// client gets a default one with the given timeout.
func New(client *http.Client, timeout time.Duration, maxBytes int64) Acquirer {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &httpAcquirer{client: client, maxBytes: maxBytes}
}

func (a *httpAcquirer) Acquire(ctx context.Context, src *models.DocumentSource) ([]byte, error) {
	switch src.Kind {
	case models.SourceUpload:
		if len(src.Data) == 0 {
			return nil, ErrNoFile
		}
		if a.maxBytes > 0 && int64(len(src.Data)) > a.maxBytes {
			return nil, ErrTooLarge
		}
		return src.Data, nil
	case models.SourceURL:
		return a.download(ctx, src.URL)
	default:
		return nil, ErrUnknownInput
	}
}

func (a *httpAcquirer) download(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/pdf, */*")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	if a.maxBytes > 0 && resp.ContentLength > a.maxBytes {
		return nil, ErrTooLarge
	}

	body := io.Reader(resp.Body)
	if a.maxBytes > 0 {
		body = io.LimitReader(resp.Body, a.maxBytes+1)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if a.maxBytes > 0 && int64(len(data)) > a.maxBytes {
		return nil, ErrTooLarge
	}

	return data, nil
}
