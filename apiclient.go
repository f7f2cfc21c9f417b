package goSession

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// skipAuthKey marks a request as outside the authenticated surface: no bearer
// header is attached and a 401 is passed through without refresh-and-replay.
// Login, register, refresh, and verify use it.
type skipAuthKey struct{}

func withoutAuth(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipAuthKey{}, true)
}

func isAuthExempt(ctx context.Context) bool {
	exempt, _ := ctx.Value(skipAuthKey{}).(bool)
	return exempt
}

func (s *Session) endpoint(path string, query url.Values) string {
	full := strings.TrimRight(s.config.API.BaseURL, "/") + path
	if len(query) > 0 {
		full += "?" + query.Encode()
	}
	return full
}

// doJSON issues a request with a JSON (or nil) body and decodes a JSON
// response into out. Non-2xx responses become [APIError].
func (s *Session) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.endpoint(path, query), reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.send(req, out)
}

// doMultipart issues a multipart/form-data POST. The whole body is buffered
// up front so the transport can replay it.
func (s *Session) doMultipart(ctx context.Context, path string, fields map[string]string, files []FileUpload, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return fmt.Errorf("encode form field %s: %w", name, err)
		}
	}
	for _, file := range files {
		part, err := writer.CreateFormFile(file.Field, file.Filename)
		if err != nil {
			return fmt.Errorf("encode form file %s: %w", file.Field, err)
		}
		if _, err := part.Write(file.Content); err != nil {
			return fmt.Errorf("encode form file %s: %w", file.Field, err)
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint(path, nil), bytes.NewReader(buf.Bytes()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return s.send(req, out)
}

func (s *Session) send(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if s.config.API.UserAgent != "" {
		req.Header.Set("User-Agent", s.config.API.UserAgent)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, payload)
	}
	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// GetJSON issues an authenticated GET and decodes the response into out. It
// is the request primitive the graph and stats clients build on.
func (s *Session) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	if s == nil {
		return ErrSessionNotReady
	}
	return s.doJSON(ctx, http.MethodGet, path, query, nil, out)
}

// PostJSON issues an authenticated POST with a JSON body.
func (s *Session) PostJSON(ctx context.Context, path string, body, out any) error {
	if s == nil {
		return ErrSessionNotReady
	}
	return s.doJSON(ctx, http.MethodPost, path, nil, body, out)
}
