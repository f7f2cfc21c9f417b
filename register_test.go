package goSession

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
	"testing"
)

func TestRegisterSendsJSON(t *testing.T) {
	backend := newStubBackend(t)

	var contentType, body string
	backend.handle("/users/register/", func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		writeStubJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
	})
	session := newTestSession(t, backend, nil)

	result, err := session.Register(context.Background(), RegisterRequest{
		Username:  "alice",
		Nickname:  "Alice",
		Password:  "pw-123456",
		Password2: "pw-123456",
		Email:     "a@b.com",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if contentType != "application/json" {
		t.Fatalf("content type = %q, want application/json", contentType)
	}
	if !strings.Contains(body, `"username":"alice"`) || !strings.Contains(body, `"password2":"pw-123456"`) {
		t.Fatalf("unexpected register body: %s", body)
	}
	if result.Message != "User registered successfully" {
		t.Fatalf("result message = %q", result.Message)
	}
	if session.IsAuthenticated() {
		t.Fatal("register must not mutate session state")
	}
}

func TestRegisterWithFileUsesMultipart(t *testing.T) {
	backend := newStubBackend(t)

	var contentType string
	var gotUsername, gotFile string
	backend.handle("/users/register/", func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			writeStubJSON(w, http.StatusBadRequest, map[string]string{"detail": "bad form"})
			return
		}
		gotUsername = r.FormValue("username")
		file, header, err := r.FormFile("avatar")
		if err == nil {
			raw, _ := io.ReadAll(file)
			_ = file.Close()
			gotFile = header.Filename + ":" + string(raw)
		}
		writeStubJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
	})
	session := newTestSession(t, backend, nil)

	_, err := session.Register(context.Background(), RegisterRequest{
		Username:  "alice",
		Nickname:  "Alice",
		Password:  "pw-123456",
		Password2: "pw-123456",
		Files: []FileUpload{
			{Field: "avatar", Filename: "me.png", Content: []byte("png-bytes")},
		},
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "multipart/form-data" {
		t.Fatalf("content type = %q, want multipart/form-data", contentType)
	}
	if gotUsername != "alice" {
		t.Fatalf("username field = %q", gotUsername)
	}
	if gotFile != "me.png:png-bytes" {
		t.Fatalf("file part = %q", gotFile)
	}
}

func TestRegisterPreservesValidationDetail(t *testing.T) {
	backend := newStubBackend(t)
	backend.handle("/users/register/", func(w http.ResponseWriter, r *http.Request) {
		writeStubJSON(w, http.StatusBadRequest, map[string]any{
			"password": []string{"Passwords do not match"},
		})
	})
	session := newTestSession(t, backend, nil)

	_, err := session.Register(context.Background(), RegisterRequest{Username: "alice"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", apiErr.StatusCode)
	}
	if _, ok := apiErr.Fields["password"]; !ok {
		t.Fatalf("validation detail lost: %v", apiErr.Fields)
	}
}
