package docstore

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
)

// Ensure HTTP implements Store at compile time.
var _ Store = (*HTTP)(nil)

const (
	defaultUserAgent   = "pantry/0.1"
	defaultHTTPTimeout = 5 * time.Second
)

// HTTP talks to a remote document service over JSON:
//
//	GET    /v1/collections/{collection}/documents
//	GET    /v1/collections/{collection}/documents/{key}
//	PUT    /v1/collections/{collection}/documents/{key}[?merge=true]
//	DELETE /v1/collections/{collection}/documents/{key}
type HTTP struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	token     string
}

type documentPayload struct {
	Key    string          `json:"key"`
	Fields json.RawMessage `json:"fields"`
}

type listPayload struct {
	Documents []documentPayload `json:"documents"`
}

type writePayload struct {
	Fields Fields `json:"fields"`
}

// NewHTTP builds a client for the service at baseURL. token, when set, is sent
// as a bearer credential.
func NewHTTP(baseURL, token string, timeout time.Duration) (*HTTP, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &HTTP{
		baseURL: base,
		http: &http.Client{
			Timeout: timeout,
		},
		userAgent: defaultUserAgent,
		token:     strings.TrimSpace(token),
	}, nil
}

// ListAll implements Store.
func (c *HTTP) ListAll(ctx context.Context, collection string) ([]Document, error) {
	var payload listPayload
	status, err := c.do(ctx, http.MethodGet, c.collectionPath(collection), nil, &payload)
	if err != nil {
		return nil, err
	}
	if err := checkStatus("list", status); err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(payload.Documents))
	for _, d := range payload.Documents {
		fields, err := decodeFields(d.Fields)
		if err != nil {
			return nil, fmt.Errorf("http list %q: %w", d.Key, err)
		}
		docs = append(docs, Document{Key: d.Key, Fields: fields})
	}
	return docs, nil
}

// GetOne implements Store.
func (c *HTTP) GetOne(ctx context.Context, collection, key string) (Document, bool, error) {
	if err := validateKey(key); err != nil {
		return Document{}, false, err
	}
	var payload documentPayload
	status, err := c.do(ctx, http.MethodGet, c.documentPath(collection, key), nil, &payload)
	if err != nil {
		return Document{}, false, err
	}
	if status == http.StatusNotFound {
		return Document{}, false, nil
	}
	if err := checkStatus("get", status); err != nil {
		return Document{}, false, err
	}
	fields, err := decodeFields(payload.Fields)
	if err != nil {
		return Document{}, false, fmt.Errorf("http get %q: %w", key, err)
	}
	return Document{Key: key, Fields: fields}, true, nil
}

// SetOne implements Store.
func (c *HTTP) SetOne(ctx context.Context, collection, key string, fields Fields, merge bool) error {
	if err := validateKey(key); err != nil {
		return err
	}
	normalized, err := Normalize(fields)
	if err != nil {
		return err
	}
	target := c.documentPath(collection, key)
	if merge {
		target.RawQuery = url.Values{"merge": []string{"true"}}.Encode()
	}
	status, err := c.do(ctx, http.MethodPut, target, writePayload{Fields: normalized}, nil)
	if err != nil {
		return err
	}
	return checkStatus("set", status)
}

// DeleteOne implements Store.
func (c *HTTP) DeleteOne(ctx context.Context, collection, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	status, err := c.do(ctx, http.MethodDelete, c.documentPath(collection, key), nil, nil)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return nil
	}
	return checkStatus("delete", status)
}

// Close implements Store.
func (c *HTTP) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTP) collectionPath(collection string) *url.URL {
	return c.endpoint("v1", "collections", collection, "documents")
}

func (c *HTTP) documentPath(collection, key string) *url.URL {
	return c.endpoint("v1", "collections", collection, "documents", key)
}

// endpoint appends segments to the base URL path. Each segment is escaped on
// its own so keys such as "a/b" or ".." stay a single path element.
func (c *HTTP) endpoint(segments ...string) *url.URL {
	u := *c.baseURL
	path := strings.TrimSuffix(u.Path, "/")
	raw := strings.TrimSuffix(u.EscapedPath(), "/")
	for _, seg := range segments {
		path += "/" + seg
		raw += "/" + escapeSegment(seg)
	}
	u.Path = path
	u.RawPath = raw
	return &u
}

// escapeSegment is url.PathEscape plus dot segments, which PathEscape leaves
// alone and clients or proxies would otherwise collapse.
func escapeSegment(seg string) string {
	if strings.Trim(seg, ".") == "" {
		return strings.Repeat("%2E", len(seg))
	}
	return url.PathEscape(seg)
}

// do sends the request and decodes a 2xx body into dest. Transport failures
// are reported as ErrUnavailable; the status code is left to the caller.
func (c *HTTP) do(ctx context.Context, method string, reqURL *url.URL, payload, dest any) (int, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, unavailable("http", "execute request", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 || dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}

func checkStatus(op string, status int) error {
	switch {
	case status >= 500:
		return unavailable("http", op, fmt.Errorf("status %d", status))
	case status >= 300:
		return fmt.Errorf("http %s: status %d", op, status)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("http store url is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse http_url %q: %w", raw, err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawPath = strings.TrimSuffix(u.RawPath, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
