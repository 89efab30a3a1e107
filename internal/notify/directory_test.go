package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	memoryrepository "tradealerts/internal/repository/memory"
)

func TestDirectoryResolveFallback(t *testing.T) {
	d := &Directory{Repo: memoryrepository.New()}
	ctx := context.Background()

	if _, ok := d.Resolve(ctx, "SPY"); ok {
		t.Fatalf("empty directory resolved a URL")
	}

	if !d.Set(ctx, "default", "https://hooks.example/default", "") {
		t.Fatalf("Set default failed")
	}
	url, ok := d.Resolve(ctx, "SPY")
	if !ok || url != "https://hooks.example/default" {
		t.Fatalf("Resolve = (%q, %v), want default fallback", url, ok)
	}

	if !d.Set(ctx, "spy", "https://hooks.example/spy", "spy channel") {
		t.Fatalf("Set symbol failed")
	}
	url, ok = d.Resolve(ctx, "SPY")
	if !ok || url != "https://hooks.example/spy" {
		t.Fatalf("Resolve = (%q, %v), want symbol-specific URL", url, ok)
	}

	// Removing the symbol endpoint falls back to default again.
	if !d.Remove(ctx, "SPY") {
		t.Fatalf("Remove failed")
	}
	url, _ = d.Resolve(ctx, "SPY")
	if url != "https://hooks.example/default" {
		t.Fatalf("Resolve after remove = %q, want default", url)
	}
}

func TestDirectoryDefaultRowProtected(t *testing.T) {
	d := &Directory{Repo: memoryrepository.New()}
	ctx := context.Background()

	d.Set(ctx, "default", "https://hooks.example/default", "")
	if d.Remove(ctx, "default") {
		t.Fatalf("default row must not be removable")
	}
	if _, ok := d.Resolve(ctx, "SPY"); !ok {
		t.Fatalf("default row lost")
	}
}

func TestDirectorySymbolsExcludesDefault(t *testing.T) {
	d := &Directory{Repo: memoryrepository.New()}
	ctx := context.Background()

	d.Set(ctx, "default", "https://hooks.example/default", "")
	d.Set(ctx, "spy", "https://hooks.example/spy", "")
	d.Set(ctx, "qqq", "https://hooks.example/qqq", "")

	symbols := d.Symbols(ctx)
	if len(symbols) != 2 {
		t.Fatalf("symbols = %v, want 2 entries", symbols)
	}
	for _, sym := range symbols {
		if sym != "SPY" && sym != "QQQ" {
			t.Fatalf("unexpected symbol %q", sym)
		}
	}
}

func TestSenderSend(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sender := NewSender(0, nil)
	if err := sender.Send(context.Background(), srv.URL, "hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotBody != `{"content":"hello"}` {
		t.Fatalf("body = %s", gotBody)
	}
}

func TestSenderSendRejectsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	sender := NewSender(0, nil)
	if err := sender.Send(context.Background(), srv.URL, "hello"); err == nil {
		t.Fatalf("non-2xx response should error")
	}
}
