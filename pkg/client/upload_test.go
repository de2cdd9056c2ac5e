package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formflow/pkg/upload"
)

func TestUploadClient_StoresMultipartFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "resume.pdf", header.Filename)
		assert.Equal(t, "application/pdf", header.Header.Get("Content-Type"))
		assert.Equal(t, "pdf bytes", string(content))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"file-42","url":"https://cdn.example.com/file-42","name":"resume.pdf","size":9}`)
	}))
	defer srv.Close()

	c, err := NewUploadClient(srv.URL)
	require.NoError(t, err)

	meta, err := c.Upload(context.Background(), upload.File{
		Name:        "resume.pdf",
		Size:        9,
		ContentType: "application/pdf",
		Content:     strings.NewReader("pdf bytes"),
	})
	require.NoError(t, err)

	assert.Equal(t, "file-42", meta.RemoteID)
	assert.Equal(t, "https://cdn.example.com/file-42", meta.URL)
	assert.Equal(t, "resume.pdf", meta.Name)
	assert.Equal(t, int64(9), meta.Size)
	assert.Equal(t, "application/pdf", meta.ContentType)
}

func TestUploadClient_RejectsResponseWithoutID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"url":"https://cdn.example.com/x"}`)
	}))
	defer srv.Close()

	c, err := NewUploadClient(srv.URL)
	require.NoError(t, err)

	_, err = c.Upload(context.Background(), upload.File{Name: "a.txt", Content: strings.NewReader("x")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing file id")
}

func TestUploadClient_SurfacesUploadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too large", http.StatusRequestEntityTooLarge)
	}))
	defer srv.Close()

	c, err := NewUploadClient(srv.URL)
	require.NoError(t, err)

	_, err = c.Upload(context.Background(), upload.File{Name: "big.bin", Content: strings.NewReader("x")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "413")
}

func TestUploadClient_DeleteTargetsRemoteID(t *testing.T) {
	var gotPath, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, err := NewUploadClient(srv.URL + "/media")
	require.NoError(t, err)

	require.NoError(t, c.Delete(context.Background(), "file-42"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/media/file-42", gotPath)
}

func TestUploadClient_DeleteTreatsNotFoundAsGone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c, err := NewUploadClient(srv.URL)
	require.NoError(t, err)

	require.NoError(t, c.Delete(context.Background(), "already-gone"))
}

func TestUploadClient_DeleteRequiresID(t *testing.T) {
	c, err := NewUploadClient("https://backend.example.com/media")
	require.NoError(t, err)

	require.Error(t, c.Delete(context.Background(), " "))
}
