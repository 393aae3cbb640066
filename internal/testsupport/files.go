package testsupport

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// PNG returns a small valid PNG whose pixels depend on seed, so different
// seeds hash differently.
func PNG(t testing.TB, seed uint8) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for x := 0; x < 2; x++ {
		for y := 0; y < 2; y++ {
			img.Set(x, y, color.RGBA{R: seed, G: uint8(x * 100), B: uint8(y * 100), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// ImageServer serves body with contentType for every path and counts hits.
// Paths containing "missing" answer 404.
type ImageServer struct {
	*httptest.Server
	hits atomic.Int64
}

// NewImageServer starts an ImageServer that is closed when the test ends.
func NewImageServer(t testing.TB, body []byte, contentType string) *ImageServer {
	t.Helper()

	srv := &ImageServer{}
	srv.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srv.hits.Add(1)
		if bytes.Contains([]byte(r.URL.Path), []byte("missing")) {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// Hits reports how many requests the server has answered.
func (s *ImageServer) Hits() int64 {
	return s.hits.Load()
}
