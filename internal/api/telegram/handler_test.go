package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/futig/docqa-bot/internal/pkg/ratelimit"
	"go.uber.org/zap"
)

type fakeAnswerer struct {
	mu      sync.Mutex
	queries []string
}

func (f *fakeAnswerer) Answer(_ context.Context, query, _ string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	return "You get 25 days."
}

type sent struct {
	chatID int64
	text   string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sent
}

func (f *fakeSender) SendText(_ context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sent{chatID, text})
	return nil
}

func (f *fakeSender) SendTyping(int64) error { return nil }

func newTestHandler(limiter RateLimiter) (*Handler, *fakeAnswerer, *fakeSender) {
	a, s := &fakeAnswerer{}, &fakeSender{}
	if limiter == nil {
		limiter = ratelimit.New(60, 20)
	}
	return NewHandler(a, s, limiter, "faiss_index", time.Minute, zap.NewNop()), a, s
}

func post(h *Handler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h.Webhook(rec, req)
	return rec
}

func TestWebhookAnswersTextMessage(t *testing.T) {
	h, a, s := newTestHandler(nil)

	rec := post(h, `{"update_id":1,"message":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"},"text":"How many annual leave days do I get?"}}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(a.queries) != 1 || a.queries[0] != "How many annual leave days do I get?" {
		t.Errorf("queries = %v", a.queries)
	}
	if len(s.sent) != 1 || s.sent[0].chatID != 42 || s.sent[0].text != "You get 25 days." {
		t.Errorf("sent = %+v", s.sent)
	}
}

func TestWebhookWithoutTextIsAcknowledged(t *testing.T) {
	h, a, s := newTestHandler(nil)

	bodies := []string{
		`{"update_id":2,"message":{"message_id":8,"date":0,"chat":{"id":42,"type":"private"},"sticker":{"file_id":"x","file_unique_id":"y","width":1,"height":1,"is_animated":false}}}`,
		`{"update_id":3}`,
		`{"update_id":4,"message":{"message_id":9,"date":0,"chat":{"id":42,"type":"private"},"text":"   "}}`,
		`not json`,
	}
	for _, b := range bodies {
		if rec := post(h, b); rec.Code != http.StatusOK {
			t.Errorf("status = %d for %s", rec.Code, b)
		}
	}
	if len(a.queries) != 0 || len(s.sent) != 0 {
		t.Errorf("pipeline calls = %d, messages = %d", len(a.queries), len(s.sent))
	}
}

func TestWebhookDropsRedeliveredUpdates(t *testing.T) {
	h, a, _ := newTestHandler(nil)
	body := `{"update_id":5,"message":{"message_id":10,"date":0,"chat":{"id":42,"type":"private"},"text":"leave?"}}`

	post(h, body)
	post(h, body)

	if len(a.queries) != 1 {
		t.Errorf("queries = %d, want 1", len(a.queries))
	}
}

func TestWebhookStartCommand(t *testing.T) {
	h, a, s := newTestHandler(nil)

	post(h, `{"update_id":6,"message":{"message_id":11,"date":0,"chat":{"id":42,"type":"private"},"text":"/start","entities":[{"type":"bot_command","offset":0,"length":6}]}}`)

	if len(a.queries) != 0 {
		t.Error("command reached the pipeline")
	}
	if len(s.sent) != 1 || s.sent[0].text != WelcomeText {
		t.Errorf("sent = %+v", s.sent)
	}
}

func TestWebhookRateLimited(t *testing.T) {
	h, a, s := newTestHandler(ratelimit.New(1, 1))

	for i, id := range []string{"20", "21", "22"} {
		rec := post(h, `{"update_id":`+id+`,"message":{"message_id":1,"date":0,"chat":{"id":7,"type":"private"},"text":"q"}}`)
		if rec.Code != http.StatusOK {
			t.Errorf("request %d: status %d", i, rec.Code)
		}
	}

	if len(a.queries) != 1 {
		t.Errorf("queries = %d, want 1", len(a.queries))
	}
	// one answer plus one throttle notice
	if len(s.sent) != 2 || s.sent[1].text != ratelimit.Notice(1) {
		t.Errorf("sent = %+v", s.sent)
	}
}

func TestWebhookSecretToken(t *testing.T) {
	const update = `{"update_id":5,"message":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"},"text":"leave days?"}}`
	tests := []struct {
		name   string
		header string
		status int
		calls  int
	}{
		{name: "matching", header: "s3cret", status: http.StatusOK, calls: 1},
		{name: "missing", header: "", status: http.StatusForbidden, calls: 0},
		{name: "wrong", header: "guess", status: http.StatusForbidden, calls: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, s := &fakeAnswerer{}, &fakeSender{}
			h := NewHandler(a, s, ratelimit.New(60, 20), "faiss_index", time.Minute, zap.NewNop(), WithSecretToken("s3cret"))

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader(update))
			if tt.header != "" {
				req.Header.Set(SecretTokenHeader, tt.header)
			}
			h.Webhook(rec, req)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if len(a.queries) != tt.calls || len(s.sent) != tt.calls {
				t.Errorf("queries = %d, sent = %d, want %d", len(a.queries), len(s.sent), tt.calls)
			}
		})
	}
}
