package cache

import (
	"errors"
	"testing"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	c, err := New("memory", ProviderConfig{})
	if err != nil {
		t.Fatalf("New memory cache: %v", err)
	}
	r := NewResolver(c)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestResolver_MemoisesFirstResult(t *testing.T) {
	r := newTestResolver(t)

	calls := 0
	resolve := func() (string, error) {
		calls++
		return "27205", nil
	}

	for i := 0; i < 3; i++ {
		val, err := r.GetOrResolve("movie_42", resolve)
		if err != nil {
			t.Fatalf("GetOrResolve: %v", err)
		}
		if val != "27205" {
			t.Fatalf("Expected 27205, got %q", val)
		}
	}

	if calls != 1 {
		t.Fatalf("Expected exactly 1 resolve call, got %d", calls)
	}
}

func TestResolver_MemoisesEmptyResult(t *testing.T) {
	r := newTestResolver(t)

	calls := 0
	resolve := func() (string, error) {
		calls++
		return "", nil
	}

	_, _ = r.GetOrResolve("episode_1", resolve)
	_, _ = r.GetOrResolve("episode_1", resolve)

	if calls != 1 {
		t.Fatalf("Expected empty result to be memoised, got %d calls", calls)
	}
}

func TestResolver_DoesNotMemoiseErrors(t *testing.T) {
	r := newTestResolver(t)

	calls := 0
	boom := errors.New("tmdb unavailable")
	resolve := func() (string, error) {
		calls++
		if calls == 1 {
			return "", boom
		}
		return "tt1375666", nil
	}

	if _, err := r.GetOrResolve("movie_42", resolve); !errors.Is(err, boom) {
		t.Fatalf("Expected first call to return the resolve error, got %v", err)
	}

	val, err := r.GetOrResolve("movie_42", resolve)
	if err != nil {
		t.Fatalf("Expected second call to succeed, got %v", err)
	}
	if val != "tt1375666" {
		t.Fatalf("Expected tt1375666, got %q", val)
	}
	if calls != 2 {
		t.Fatalf("Expected 2 resolve calls, got %d", calls)
	}
	if r.Len() != 1 {
		t.Fatalf("Expected 1 memoised key, got %d", r.Len())
	}
}

func TestResolver_KeysAreIndependent(t *testing.T) {
	r := newTestResolver(t)

	_, _ = r.GetOrResolve("movie_1", func() (string, error) { return "a", nil })
	val, _ := r.GetOrResolve("movie_2", func() (string, error) { return "b", nil })

	if val != "b" {
		t.Fatalf("Expected b for movie_2, got %q", val)
	}
}
