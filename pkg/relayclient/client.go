// Package relayclient calls the billing server's upload relay on behalf of a
// client that owns the storage account credentials.
package relayclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	relayPath       = "/save-to-mega"
	mimeJSON        = "application/json"
	mimeMsgpack     = "application/msgpack"
	defaultTimeout  = 2 * time.Minute
	maxResponseSize = 1 << 20
)

// Local validation errors. No request is sent when one of these is returned.
var (
	ErrMissingCredentials = errors.New("storage credentials not found, save credentials first")
	ErrMissingFilename    = errors.New("filename is required")
)

// ServerError is a failed relay call as reported by the server.
type ServerError struct {
	Status  int
	Code    string
	Message string
}

func (e *ServerError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("upload failed (%d %s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("upload failed (%d): %s", e.Status, e.Message)
}

// File describes the uploaded file as assigned by the remote provider.
type File struct {
	ID          string    `json:"id" msgpack:"id"`
	Name        string    `json:"name" msgpack:"name"`
	Size        int64     `json:"size" msgpack:"size"`
	Provider    string    `json:"provider,omitempty" msgpack:"provider,omitempty"`
	Location    string    `json:"location,omitempty" msgpack:"location,omitempty"`
	ContentType string    `json:"contentType,omitempty" msgpack:"contentType,omitempty"`
	UploadedAt  time.Time `json:"uploadedAt" msgpack:"uploadedAt"`
}

// Result is returned by every upload call. Message is suitable for display.
type Result struct {
	Success bool
	Message string
	File    *File
}

// Options overrides stored credentials for a single call.
type Options struct {
	Email    string
	Password string
}

// Client uploads files through the relay.
type Client struct {
	baseURL    string
	store      CredentialStore
	httpClient *http.Client
	msgpack    bool
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithMsgpack asks the server for msgpack-encoded responses.
func WithMsgpack() ClientOption {
	return func(c *Client) { c.msgpack = true }
}

// New creates a client for the server at baseURL. store may be nil when every
// call passes credentials in Options.
func New(baseURL string, store CredentialStore, opts ...ClientOption) *Client {
	if store == nil {
		store = NewMemoryStore()
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		store:      store,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UploadFile uploads content as a text file.
func (c *Client) UploadFile(ctx context.Context, filename, content string, opts Options) (*Result, error) {
	return c.upload(ctx, filename, content, false, opts)
}

// UploadJSON uploads data as indented JSON.
func (c *Client) UploadJSON(ctx context.Context, data interface{}, filename string, opts Options) (*Result, error) {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return failed(fmt.Errorf("failed to encode JSON: %w", err))
	}
	return c.upload(ctx, filename, string(encoded), false, opts)
}

// UploadImage uploads base64 image data. A data URI prefix is removed before
// sending.
func (c *Client) UploadImage(ctx context.Context, base64Data, filename string, opts Options) (*Result, error) {
	if strings.HasPrefix(base64Data, "data:") {
		if i := strings.IndexByte(base64Data, ','); i >= 0 {
			base64Data = base64Data[i+1:]
		}
	}
	return c.upload(ctx, filename, base64Data, true, opts)
}

type relayRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Filename string `json:"filename"`
	Content  string `json:"content"`
	IsBase64 bool   `json:"isBase64,omitempty"`
}

type relayResponse struct {
	Success bool   `json:"success" msgpack:"success"`
	File    *File  `json:"file,omitempty" msgpack:"file,omitempty"`
	Error   string `json:"error,omitempty" msgpack:"error,omitempty"`
	Code    string `json:"code,omitempty" msgpack:"code,omitempty"`
}

func (c *Client) upload(ctx context.Context, filename, content string, isBase64 bool, opts Options) (*Result, error) {
	creds, err := c.resolveCredentials(opts)
	if err != nil {
		return failed(err)
	}

	filename = strings.TrimSpace(filename)
	if filename == "" {
		return failed(ErrMissingFilename)
	}

	body, err := json.Marshal(relayRequest{
		Email:    creds.Email,
		Password: creds.Password,
		Filename: filename,
		Content:  content,
		IsBase64: isBase64,
	})
	if err != nil {
		return failed(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+relayPath, bytes.NewReader(body))
	if err != nil {
		return failed(err)
	}
	req.Header.Set("Content-Type", mimeJSON)
	if c.msgpack {
		req.Header.Set("Accept", mimeMsgpack)
	} else {
		req.Header.Set("Accept", mimeJSON)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return failed(fmt.Errorf("relay request failed: %w", err))
	}
	defer resp.Body.Close()

	var out relayResponse
	if err := c.decode(resp, &out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return failed(&ServerError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)})
		}
		return failed(fmt.Errorf("failed to decode relay response: %w", err))
	}

	if resp.StatusCode != http.StatusOK || !out.Success {
		msg := out.Error
		if msg == "" {
			msg = "Upload failed"
		}
		return failed(&ServerError{Status: resp.StatusCode, Code: out.Code, Message: msg})
	}

	return &Result{
		Success: true,
		Message: "File saved: " + filename,
		File:    out.File,
	}, nil
}

func (c *Client) resolveCredentials(opts Options) (Credentials, error) {
	stored, err := c.store.Load()
	if err != nil {
		return Credentials{}, err
	}
	creds := Credentials{Email: opts.Email, Password: opts.Password}
	if creds.Email == "" {
		creds.Email = stored.Email
	}
	if creds.Password == "" {
		creds.Password = stored.Password
	}
	if !creds.Complete() {
		return Credentials{}, ErrMissingCredentials
	}
	return creds, nil
}

func (c *Client) decode(resp *http.Response, v interface{}) error {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return err
	}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), mimeMsgpack) {
		return msgpack.Unmarshal(data, v)
	}
	return json.Unmarshal(data, v)
}

func failed(err error) (*Result, error) {
	return &Result{Success: false, Message: "Upload failed: " + err.Error()}, err
}
