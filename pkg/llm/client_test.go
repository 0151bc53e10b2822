package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sseHandler, OpenAI-compatible bir streaming completion yanıtı yazar.
func sseHandler(t *testing.T, deltas []string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)

		for _, d := range deltas {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", d)
			flusher.Flush()
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
		flusher.Flush()
	}
}

func collect(t *testing.T, deltaChan <-chan string, errChan <-chan error) ([]string, error) {
	t.Helper()
	var got []string
	for d := range deltaChan {
		got = append(got, d)
	}
	return got, <-errChan
}

func TestClient_Stream(t *testing.T) {
	server := httptest.NewServer(sseHandler(t, []string{"Mer", "ha", "ba"}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model")
	deltaChan, errChan := client.Stream(context.Background(), []Message{
		{Role: "user", Content: "selam"},
	})

	got, err := collect(t, deltaChan, errChan)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mer", "ha", "ba"}, got)
}

func TestClient_StreamSkipsKeepaliveAndEmptyDeltas(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, ": keepalive\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{}}]}\n\n") // role-only chunk
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"tek\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model")
	deltaChan, errChan := client.Stream(context.Background(), []Message{{Role: "user", Content: "x"}})

	got, err := collect(t, deltaChan, errChan)
	require.NoError(t, err)
	assert.Equal(t, []string{"tek"}, got)
}

func TestClient_StreamUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid api key"}}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, "kotu-key", "test-model")
	deltaChan, errChan := client.Stream(context.Background(), []Message{{Role: "user", Content: "x"}})

	got, err := collect(t, deltaChan, errChan)
	assert.Empty(t, got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestClient_StreamPartialThenError(t *testing.T) {
	// Upstream [DONE] demeden bağlantıyı keser: o ana kadarki delta'lar
	// gelir, ardından errChan'den hata okunur... ya da EOF temizse nil.
	// Burada bozuk JSON ile deterministik bir hata üretiyoruz.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"kismi\"}}]}\n\n")
		fmt.Fprint(w, "data: {bozuk json\n\n")
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model")
	deltaChan, errChan := client.Stream(context.Background(), []Message{{Role: "user", Content: "x"}})

	got, err := collect(t, deltaChan, errChan)
	assert.Equal(t, []string{"kismi"}, got, "hata öncesi delta'lar teslim edilir")
	require.Error(t, err)
}

func TestClient_StreamContextCancel(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"ilk\"}}]}\n\n")
		w.(http.Flusher).Flush()
		<-release // [DONE] asla gelmez
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	client := NewClient(server.URL, "test-key", "test-model")
	deltaChan, errChan := client.Stream(ctx, []Message{{Role: "user", Content: "x"}})

	assert.Equal(t, "ilk", <-deltaChan)
	cancel()

	// Kanallar kapanmalı — goroutine sızmaz
	for range deltaChan {
	}
	err := <-errChan
	require.Error(t, err)
}
