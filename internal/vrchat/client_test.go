package vrchat_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"worldshelf/internal/vrchat"
)

const worldID = "wrld_4cf554b4-430c-4f8f-b53e-1f294eed230b"

func newClient(t *testing.T, baseURL string, opts ...vrchat.Option) *vrchat.Client {
	t.Helper()
	opts = append([]vrchat.Option{vrchat.WithRateLimit(0, 0)}, opts...)
	client, err := vrchat.New(baseURL, "worldshelf-test/1.0", opts...)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func TestNewRequiresBaseURLAndUserAgent(t *testing.T) {
	if _, err := vrchat.New("", "agent"); err == nil {
		t.Fatal("expected error when base url missing")
	}
	if _, err := vrchat.New("https://example.com", " "); err == nil {
		t.Fatal("expected error when user agent missing")
	}
}

func TestGetWorldSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/1/worlds/"+worldID {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("User-Agent"); got != "worldshelf-test/1.0" {
			t.Errorf("expected identifying user agent, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id":"` + worldID + `",
			"name":"The Black Cat",
			"authorName":"spookyghostboo",
			"thumbnailImageUrl":"https://example.test/thumb.png",
			"imageUrl":"https://example.test/image.png",
			"tags":["author_tag_bar","system_approved","author_tag_chill","admin_featured"]
		}`))
	}))
	t.Cleanup(server.Close)

	client := newClient(t, server.URL+"/api/1/")
	world, err := client.GetWorld(context.Background(), worldID)
	if err != nil {
		t.Fatalf("GetWorld returned error: %v", err)
	}
	if world.Name != "The Black Cat" {
		t.Fatalf("unexpected name %q", world.Name)
	}
	if author, ok := world.Author(); !ok || author != "spookyghostboo" {
		t.Fatalf("unexpected author %q (%v)", author, ok)
	}
	if thumb, ok := world.Thumbnail(); !ok || thumb != "https://example.test/thumb.png" {
		t.Fatalf("unexpected thumbnail %q (%v)", thumb, ok)
	}
	if diff := cmp.Diff([]string{"bar", "chill"}, world.AuthorTags()); diff != "" {
		t.Fatalf("author tags mismatch (-want +got):\n%s", diff)
	}
}

func TestGetWorldLegacyImageAndMissingFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"` + worldID + `","imageUrl":"https://example.test/legacy.png","tags":"not-a-list"}`))
	}))
	t.Cleanup(server.Close)

	client := newClient(t, server.URL)
	world, err := client.GetWorld(context.Background(), worldID)
	if err != nil {
		t.Fatalf("GetWorld returned error: %v", err)
	}
	if thumb, ok := world.Thumbnail(); !ok || thumb != "https://example.test/legacy.png" {
		t.Fatalf("expected legacy image fallback, got %q (%v)", thumb, ok)
	}
	if _, ok := world.Author(); ok {
		t.Fatal("expected author to be absent")
	}
	if tags := world.AuthorTags(); tags == nil || len(tags) != 0 {
		t.Fatalf("expected empty non-nil tags, got %#v", tags)
	}
}

func TestGetWorldRemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"message":"World not found","status_code":404}}`))
	}))
	t.Cleanup(server.Close)

	client := newClient(t, server.URL)
	_, err := client.GetWorld(context.Background(), worldID)
	var remote *vrchat.RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if !remote.NotFound() {
		t.Fatalf("expected 404, got %d", remote.StatusCode)
	}
}

func TestGetWorldNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client := newClient(t, baseURL)
	_, err := client.GetWorld(context.Background(), worldID)
	var netErr *vrchat.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestGetWorldMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":`))
	}))
	t.Cleanup(server.Close)

	client := newClient(t, server.URL)
	if _, err := client.GetWorld(context.Background(), worldID); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestBreakerOpensAfterServerErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client := newClient(t, server.URL, vrchat.WithBreaker(2, time.Minute))
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		var remote *vrchat.RemoteError
		if _, err := client.GetWorld(ctx, worldID); !errors.As(err, &remote) || remote.StatusCode != 500 {
			t.Fatalf("attempt %d: expected RemoteError 500, got %v", i, err)
		}
	}
	if _, err := client.GetWorld(ctx, worldID); !errors.Is(err, vrchat.ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if got := hits.Load(); got != 2 {
		t.Fatalf("expected open breaker to skip the request, server saw %d", got)
	}
}

func TestBreakerIgnoresNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	client := newClient(t, server.URL, vrchat.WithBreaker(1, time.Minute))
	for i := 0; i < 3; i++ {
		var remote *vrchat.RemoteError
		if _, err := client.GetWorld(context.Background(), worldID); !errors.As(err, &remote) {
			t.Fatalf("attempt %d: expected RemoteError, got %v", i, err)
		}
	}
}

func TestAuthorTags(t *testing.T) {
	cases := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "nil", in: nil, want: []string{}},
		{name: "no author tags", in: []string{"system_approved"}, want: []string{}},
		{name: "mixed", in: []string{"author_tag_game", "feature_emoji", "author_tag_"}, want: []string{"game", ""}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, vrchat.AuthorTags(tc.in)); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
