package conversation_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// recordedRequest is what the fake deployment saw for one call.
type recordedRequest struct {
	Path       string
	APIVersion string
	APIKey     string
	Body       struct {
		Model       string  `json:"model"`
		Temperature float64 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
}

// fakeAzure is an httptest stand-in for an Azure OpenAI deployment. Each call
// pops the next queued responder; with none queued it echoes the last user
// message back.
type fakeAzure struct {
	server *httptest.Server

	mu         sync.Mutex
	requests   []recordedRequest
	responders []http.HandlerFunc
}

func newFakeAzure() *fakeAzure {
	f := &fakeAzure{}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	return f
}

func (f *fakeAzure) URL() string { return f.server.URL }

func (f *fakeAzure) Close() { f.server.Close() }

func (f *fakeAzure) Requests() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

// Reply queues a successful completion with the given content.
func (f *fakeAzure) Reply(content string) {
	f.queue(func(w http.ResponseWriter, r *http.Request) {
		writeCompletion(w, content)
	})
}

// Fail queues an Azure-style JSON error.
func (f *fakeAzure) Fail(status int, code, message string) {
	f.queue(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"error":{"code":%q,"message":%q}}`, code, message)
	})
}

// Raw queues a handler that writes whatever it likes.
func (f *fakeAzure) Raw(h http.HandlerFunc) {
	f.queue(h)
}

func (f *fakeAzure) queue(h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responders = append(f.responders, h)
}

func (f *fakeAzure) serve(w http.ResponseWriter, r *http.Request) {
	defer GinkgoRecover()

	rec := recordedRequest{
		Path:       r.URL.Path,
		APIVersion: r.URL.Query().Get("api-version"),
		APIKey:     r.Header.Get("api-key"),
	}
	body, err := io.ReadAll(r.Body)
	Expect(err).NotTo(HaveOccurred())
	Expect(json.Unmarshal(body, &rec.Body)).To(Succeed())

	f.mu.Lock()
	f.requests = append(f.requests, rec)
	var next http.HandlerFunc
	if len(f.responders) > 0 {
		next = f.responders[0]
		f.responders = f.responders[1:]
	}
	f.mu.Unlock()

	if next != nil {
		next(w, r)
		return
	}

	last := rec.Body.Messages[len(rec.Body.Messages)-1]
	writeCompletion(w, "echo: "+last.Content)
}

func writeCompletion(w http.ResponseWriter, content string) {
	resp := map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4o",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
			},
		},
		"usage": map[string]any{
			"prompt_tokens":     12,
			"completion_tokens": 8,
			"total_tokens":      20,
		},
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
