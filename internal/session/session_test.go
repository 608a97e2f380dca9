package session

import (
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// =============================================================================
// Session Tests
// =============================================================================

func TestNew_RoundTripsCookies(t *testing.T) {
	cookies := []*http.Cookie{
		{Name: "session", Value: "abc", Path: "/", HttpOnly: true},
		{Name: "pref", Value: "dark"},
	}

	s := New("ladder.example.com", "admin", cookies)
	got := s.HTTPCookies()

	want := []*http.Cookie{
		{Name: "session", Value: "abc", Path: "/", HttpOnly: true},
		{Name: "pref", Value: "dark"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("cookies mismatch (-want +got):\n%s", diff)
	}
}

func TestHTTPCookies_DropsExpired(t *testing.T) {
	s := &Session{Cookies: []Cookie{
		{Name: "old", Value: "x", Expires: time.Now().Add(-time.Hour)},
		{Name: "new", Value: "y", Expires: time.Now().Add(time.Hour)},
	}}

	got := s.HTTPCookies()
	if len(got) != 1 || got[0].Name != "new" {
		t.Errorf("HTTPCookies() = %v", got)
	}
}

// =============================================================================
// Store Tests
// =============================================================================

func testStore(t *testing.T, store Store) {
	t.Helper()

	missing, err := store.Load("nobody")
	if err != nil || missing != nil {
		t.Fatalf("Load(missing) = %v, %v", missing, err)
	}

	sess := &Session{
		Host:    "ladder.example.com",
		User:    "admin",
		Cookies: []Cookie{{Name: "session", Value: "abc", Path: "/"}},
		SavedAt: time.Date(2016, 5, 17, 0, 0, 0, 0, time.UTC),
	}
	if err := store.Save(sess); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load("ladder.example.com")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(sess, got); diff != "" {
		t.Errorf("session mismatch (-want +got):\n%s", diff)
	}

	if err := store.Delete("ladder.example.com"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got, _ := store.Load("ladder.example.com"); got != nil {
		t.Error("session still present after Delete()")
	}
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestBoltStore(t *testing.T) {
	store, err := NewBoltStore(filepath.Join(t.TempDir(), "sub", "sessions.db"))
	if err != nil {
		t.Fatalf("NewBoltStore() error = %v", err)
	}
	defer store.Close()

	testStore(t, store)
}

func TestBoltStore_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")

	store, err := NewBoltStore(path)
	if err != nil {
		t.Fatalf("NewBoltStore() error = %v", err)
	}
	if err := store.Save(&Session{Host: "a", User: "u"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(&Session{Host: "b", User: "v"}); err != nil {
		t.Fatal(err)
	}
	store.Close()

	store, err = NewBoltStore(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer store.Close()

	hosts, err := store.Hosts()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, hosts); diff != "" {
		t.Errorf("hosts mismatch (-want +got):\n%s", diff)
	}
	if s, _ := store.Load("b"); s == nil || s.User != "v" {
		t.Errorf("Load(b) = %+v", s)
	}
}

func TestBoltStore_SaveWithoutHost(t *testing.T) {
	store, err := NewBoltStore(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if err := store.Save(&Session{}); err == nil {
		t.Error("Save() should reject a session without a host")
	}
}
