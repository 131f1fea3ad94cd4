package qrcode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestRenderSendsPayload(t *testing.T) {
	var gotData, gotSize string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotData = r.URL.Query().Get("data")
		gotSize = r.URL.Query().Get("size")
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngHeader)
	}))
	defer srv.Close()

	png, err := NewClient(srv.URL).Render(context.Background(), "http://localhost:8080/test-club/table/VIP1/", 0)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, png)
	assert.Equal(t, "http://localhost:8080/test-club/table/VIP1/", gotData)
	assert.Equal(t, "300x300", gotSize)
}

func TestRenderErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Render(context.Background(), "x", 100)
	assert.Error(t, err)

	html := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html></html>"))
	}))
	defer html.Close()

	_, err = NewClient(html.URL).Render(context.Background(), "x", 100)
	assert.Error(t, err)
}

func TestRenderUnconfigured(t *testing.T) {
	c := NewClient("")
	assert.False(t, c.Available())
	_, err := c.Render(context.Background(), "x", 100)
	assert.ErrorIs(t, err, ErrUnavailable)
}
