package cache

import (
	"fmt"
	"testing"
	"time"
)

func newMemory(t *testing.T, cfg ProviderConfig) Cache {
	t.Helper()
	c, err := New("memory", cfg)
	if err != nil {
		t.Fatalf("New memory cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestMemoryCache_GetSet(t *testing.T) {
	c := newMemory(t, ProviderConfig{Size: 10, TTL: time.Hour})

	if val, ok := c.Get("movie_42"); ok || val != nil {
		t.Fatalf("Expected a miss on an empty cache, got %q, %v", val, ok)
	}

	c.Set("movie_42", []byte("27205"))
	c.Set("episode_7", []byte(""))

	tests := []struct {
		key  string
		want string
	}{
		{key: "movie_42", want: "27205"},
		{key: "episode_7", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			val, ok := c.Get(tt.key)
			if !ok {
				t.Fatalf("Expected a hit for %s", tt.key)
			}
			if string(val) != tt.want {
				t.Errorf("Get(%s) = %q, want %q", tt.key, val, tt.want)
			}
			if !c.Contains(tt.key) {
				t.Errorf("Expected Contains(%s)", tt.key)
			}
		})
	}
	if c.Len() != 2 {
		t.Errorf("Expected 2 entries, got %d", c.Len())
	}
}

func TestMemoryCache_OverwriteKeepsOneEntry(t *testing.T) {
	c := newMemory(t, ProviderConfig{})

	c.Set("27205_movie", []byte("https://image.tmdb.org/t/p/w500/old.jpg"))
	c.Set("27205_movie", []byte("https://image.tmdb.org/t/p/w500/new.jpg"))

	val, _ := c.Get("27205_movie")
	if string(val) != "https://image.tmdb.org/t/p/w500/new.jpg" {
		t.Errorf("Expected the latest value, got %q", val)
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 entry after overwrite, got %d", c.Len())
	}
}

func TestMemoryCache_BoundedEvictsOldest(t *testing.T) {
	var evicted []string
	c := newMemory(t, ProviderConfig{
		Size:    2,
		TTL:     time.Hour,
		OnEvict: func(key string, _ []byte) { evicted = append(evicted, key) },
	})

	c.Set("movie_1", []byte("1"))
	c.Set("movie_2", []byte("2"))
	c.Set("movie_3", []byte("3"))

	if len(evicted) != 1 || evicted[0] != "movie_1" {
		t.Fatalf("Expected movie_1 to be evicted, got %v", evicted)
	}
	if c.Contains("movie_1") || !c.Contains("movie_2") || !c.Contains("movie_3") {
		t.Error("Expected only the two most recent keys to remain")
	}
}

func TestMemoryCache_TTLExpires(t *testing.T) {
	c := newMemory(t, ProviderConfig{TTL: 20 * time.Millisecond})

	c.Set("tt1375666", []byte("https://www.imdb.com/title/tt1375666/"))
	time.Sleep(60 * time.Millisecond)

	if _, ok := c.Get("tt1375666"); ok {
		t.Error("Expected the entry to expire")
	}
}

func TestMemoryCache_UnboundedByDefault(t *testing.T) {
	c := newMemory(t, ProviderConfig{})

	for i := 0; i < 1000; i++ {
		c.Set(fmt.Sprintf("movie_%d", i), []byte("x"))
	}

	if c.Len() != 1000 {
		t.Fatalf("Expected unbounded cache to keep 1000 entries, got %d", c.Len())
	}
	if !c.Contains("movie_0") {
		t.Fatal("Expected oldest entry to survive without a size bound")
	}
}
