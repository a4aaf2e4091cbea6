// Package remote is the HTTP client for the note service REST API. All
// methods return either the decoded payload, a typed *Error for a server
// rejection, or a transport error classified by IsNetworkError.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/haierkeys/offline-note-sync-service/internal/dto"
	"github.com/haierkeys/offline-note-sync-service/internal/export"
)

const (
	// requestsPerSecond caps the client's request rate against the server.
	requestsPerSecond = 50
	rateBurst         = 100

	defaultTimeout = 15 * time.Second
)

// rateLimitedTransport wraps an http.RoundTripper with rate limiting.
type rateLimitedTransport struct {
	transport http.RoundTripper
	limiter   *rate.Limiter
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.transport.RoundTrip(req)
}

// NewRateLimitedHTTPClient returns an http.Client that paces requests.
func NewRateLimitedHTTPClient(timeout time.Duration) *http.Client {
	interval := time.Second / time.Duration(requestsPerSecond)
	return &http.Client{
		Timeout: timeout,
		Transport: &rateLimitedTransport{
			transport: http.DefaultTransport,
			limiter:   rate.NewLimiter(rate.Every(interval), rateBurst),
		},
	}
}

// Client talks to one note service instance.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient swaps the transport; tests use it to inject failures.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithToken sends the bearer token on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: NewRateLimitedHTTPClient(defaultTimeout),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope mirrors pkg/app.Res.
type envelope struct {
	Code    int             `json:"code"`
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Details string          `json:"details"`
}

// do executes one request. out may be nil for calls without a payload.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := sonic.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "remote")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "remote")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var env envelope
	if err := sonic.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 400 {
			return &Error{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return errors.Wrap(err, "remote: undecodable response")
	}

	if resp.StatusCode >= 400 {
		message := env.Message
		if env.Details != "" {
			message += ": " + env.Details
		}
		return &Error{StatusCode: resp.StatusCode, Code: env.Code, Message: message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := sonic.Unmarshal(env.Data, out); err != nil {
			return errors.Wrap(err, "remote: undecodable payload")
		}
	}
	return nil
}

// Health probes the server. A nil error means the server is reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *Client) ListNotes(ctx context.Context, includeDeleted bool) ([]*dto.NoteDTO, error) {
	var notes []*dto.NoteDTO
	path := "/notes?includeDeleted=" + strconv.FormatBool(includeDeleted)
	if err := c.do(ctx, http.MethodGet, path, nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *Client) SearchNotes(ctx context.Context, query string) ([]*dto.NoteDTO, error) {
	var notes []*dto.NoteDTO
	path := "/notes/search?q=" + url.QueryEscape(query)
	if err := c.do(ctx, http.MethodGet, path, nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *Client) GetNote(ctx context.Context, id int64) (*dto.NoteDTO, error) {
	var note dto.NoteDTO
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/notes/%d", id), nil, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) CreateNote(ctx context.Context, params *dto.NoteCreateRequest) (*dto.NoteDTO, error) {
	var note dto.NoteDTO
	if err := c.do(ctx, http.MethodPost, "/notes", params, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) UpdateNote(ctx context.Context, id int64, params *dto.NoteUpdateRequest) (*dto.NoteDTO, error) {
	var note dto.NoteDTO
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/notes/%d", id), params, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) DeleteNote(ctx context.Context, id int64) (*dto.NoteDTO, error) {
	var note dto.NoteDTO
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/notes/%d", id), nil, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) RestoreNote(ctx context.Context, id int64) (*dto.NoteDTO, error) {
	var note dto.NoteDTO
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/notes/%d/restore", id), nil, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) ToggleFavorite(ctx context.Context, id int64) (*dto.NoteDTO, error) {
	var note dto.NoteDTO
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/notes/%d/toggle-favorite", id), nil, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// ExportNote downloads the rendered document; the filename comes from the
// attachment disposition.
func (c *Client) ExportNote(ctx context.Context, id int64, format string) (*export.Document, error) {
	path := fmt.Sprintf("/notes/%d/export?format=%s", id, url.QueryEscape(format))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "remote")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		var env envelope
		message := http.StatusText(resp.StatusCode)
		if sonic.Unmarshal(raw, &env) == nil && env.Message != "" {
			message = env.Message
		}
		return nil, &Error{StatusCode: resp.StatusCode, Code: env.Code, Message: message}
	}

	filename := ""
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		filename = params["filename"]
	}
	return &export.Document{
		Filename:    filename,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        raw,
	}, nil
}

func (c *Client) AttachTag(ctx context.Context, noteID, tagID int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/notes/%d/tags/%d", noteID, tagID), nil, nil)
}

func (c *Client) DetachTag(ctx context.Context, noteID, tagID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/notes/%d/tags/%d", noteID, tagID), nil, nil)
}

func (c *Client) ListTags(ctx context.Context) ([]*dto.TagDTO, error) {
	var tags []*dto.TagDTO
	if err := c.do(ctx, http.MethodGet, "/tags", nil, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func (c *Client) GetTag(ctx context.Context, id int64) (*dto.TagDTO, error) {
	var tag dto.TagDTO
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/tags/%d", id), nil, &tag); err != nil {
		return nil, err
	}
	return &tag, nil
}

func (c *Client) CreateTag(ctx context.Context, params *dto.TagCreateRequest) (*dto.TagDTO, error) {
	var tag dto.TagDTO
	if err := c.do(ctx, http.MethodPost, "/tags", params, &tag); err != nil {
		return nil, err
	}
	return &tag, nil
}

func (c *Client) UpdateTag(ctx context.Context, id int64, params *dto.TagUpdateRequest) (*dto.TagDTO, error) {
	var tag dto.TagDTO
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/tags/%d", id), params, &tag); err != nil {
		return nil, err
	}
	return &tag, nil
}

func (c *Client) DeleteTag(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/tags/%d", id), nil, nil)
}
