// Package llm, OpenAI-compatible bir chat completion API'sinden
// token token streaming yanıt alan ince bir istemcidir.
//
// Sunucu tarafı SSE formatı: her chunk "data: {json}" satırı olarak gelir,
// akış "data: [DONE]" ile biter. Biz sadece delta content'leri ayıklayıp
// string kanalına yazarız — üst katman (chat service) biriktirme ve
// kalıcılaştırma ile ilgilenir.
//
// Retry YOKTUR: upstream hatası o isteğin sonudur, çağıran generic
// server error'a çevirir.
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Message, completion API'sine gönderilen tek bir mesaj.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client, tek bir modele bağlı completion istemcisi.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient, constructor.
//
// http.Client'ta Timeout YOKTUR — streaming yanıt dakikalarca sürebilir.
// İptal tamamen context üzerinden çalışır: browser bağlantıyı kopardığında
// request context'i cancel olur ve upstream bağlantısı da kapanır.
func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{},
	}
}

// chatRequest, /chat/completions isteğinin gövdesi.
type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

// streamChunk, SSE frame'inin içindeki JSON — sadece delta content'i okuruz.
type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Stream, mesaj geçmişini completion API'sine gönderir ve gelen
// delta'ları bir string kanalına yazar.
//
// Kanal sözleşmesi: her iki kanal da akış bitince kapanır.
// Hata olduysa errChan'den en fazla bir error okunur — chunk kanalından
// o ana kadar gelen delta'lar yine de geçerlidir (kısmi yanıt).
func (c *Client) Stream(ctx context.Context, messages []Message) (<-chan string, <-chan error) {
	deltaChan := make(chan string, 16)
	errChan := make(chan error, 1)

	go func() {
		defer close(deltaChan)
		defer close(errChan)
		if err := c.stream(ctx, messages, deltaChan); err != nil {
			errChan <- err
		}
	}()

	return deltaChan, errChan
}

func (c *Client) stream(ctx context.Context, messages []Message, deltaChan chan<- string) error {
	body, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create completion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Hata gövdesi kısa bir JSON'dır — log'a sığacak kadarını oku
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("completion request failed: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	scanner := bufio.NewScanner(resp.Body)
	// Tek bir SSE satırı default 64KB buffer'ı aşabilir
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue // ": keepalive" gibi yorum satırları
		}
		if data == "[DONE]" {
			return nil
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return fmt.Errorf("failed to decode completion chunk: %w", err)
		}

		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			select {
			case deltaChan <- chunk.Choices[0].Delta.Content:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return scanner.Err()
}
