package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/easelkit/easel/pkg/errors"
	"github.com/easelkit/easel/pkg/httputil"
	"github.com/easelkit/easel/pkg/scene"
)

// RemoteStore talks to a document service over HTTP (the `easel serve`
// API or anything wire-compatible). Transient failures are retried with
// exponential backoff.
type RemoteStore struct {
	baseURL string
	client  *http.Client
}

// NewRemoteStore creates a client for the service at baseURL
// (http(s)://host:port).
func NewRemoteStore(baseURL string) (*RemoteStore, error) {
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, errors.New(errors.ErrCodeInvalidInput, "remote store url %q", baseURL)
	}
	return &RemoteStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (s *RemoteStore) docURL(id string) string {
	return s.baseURL + "/documents/" + url.PathEscape(id)
}

func (s *RemoteStore) Save(ctx context.Context, doc *scene.Document) error {
	if err := validateDoc(doc); err != nil {
		return err
	}
	data, err := scene.MarshalDocument(doc)
	if err != nil {
		return err
	}
	return s.retry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.docURL(doc.ID), bytes.NewReader(data))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		return s.do(req, nil)
	})
}

func (s *RemoteStore) Load(ctx context.Context, id string) (*scene.Document, error) {
	var doc *scene.Document
	err := s.retry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.docURL(id), nil)
		if err != nil {
			return err
		}
		return s.do(req, func(body []byte) error {
			doc, err = scene.UnmarshalDocument(body)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *RemoteStore) List(ctx context.Context) ([]Info, error) {
	var out []Info
	err := s.retry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/documents", nil)
		if err != nil {
			return err
		}
		return s.do(req, func(body []byte) error {
			return json.Unmarshal(body, &out)
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RemoteStore) Delete(ctx context.Context, id string) error {
	return s.retry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.docURL(id), nil)
		if err != nil {
			return err
		}
		return s.do(req, nil)
	})
}

func (s *RemoteStore) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// retry wraps an attempt with the shared backoff policy. Network errors and
// 5xx responses come back as RetryableError from do.
func (s *RemoteStore) retry(ctx context.Context, fn func() error) error {
	return httputil.RetryWithBackoff(ctx, fn)
}

// do executes the request and classifies the outcome: 2xx passes the body
// to onBody, 404 maps to a not-found error, 5xx and transport failures are
// retryable, everything else is terminal.
func (s *RemoteStore) do(req *http.Request, onBody func([]byte) error) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return &httputil.RetryableError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &httputil.RetryableError{Err: err}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if onBody != nil {
			return onBody(body)
		}
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return errors.New(errors.ErrCodeDocumentNotFound, "remote: %s", strings.TrimSpace(string(body)))
	case resp.StatusCode >= 500:
		return &httputil.RetryableError{
			Err: fmt.Errorf("remote status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	default:
		return errors.New(errors.ErrCodeStoreUnavailable, "remote status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}
}

var _ Store = (*RemoteStore)(nil)
