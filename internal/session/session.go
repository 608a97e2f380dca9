// Package session persists backend login sessions between invocations.
package session

import (
	"net/http"
	"time"
)

// Cookie is the persisted form of an http.Cookie.
type Cookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path,omitempty"`
	Domain   string    `json:"domain,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HttpOnly bool      `json:"http_only,omitempty"`
}

// Session is the login state for one backend host.
type Session struct {
	Host    string    `json:"host"`
	User    string    `json:"user"`
	Cookies []Cookie  `json:"cookies"`
	SavedAt time.Time `json:"saved_at"`
}

// Store persists sessions keyed by host.
type Store interface {
	Save(s *Session) error
	Load(host string) (*Session, error)
	Delete(host string) error
	Close() error
}

// New builds a session from the cookies a client holds.
func New(host, user string, cookies []*http.Cookie) *Session {
	s := &Session{Host: host, User: user, SavedAt: time.Now()}
	for _, c := range cookies {
		s.Cookies = append(s.Cookies, Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		})
	}
	return s
}

// HTTPCookies converts the stored cookies, dropping expired ones.
func (s *Session) HTTPCookies() []*http.Cookie {
	now := time.Now()
	out := make([]*http.Cookie, 0, len(s.Cookies))
	for _, c := range s.Cookies {
		if !c.Expires.IsZero() && c.Expires.Before(now) {
			continue
		}
		out = append(out, &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		})
	}
	return out
}

// MemoryStore keeps sessions in memory.
type MemoryStore struct {
	sessions map[string]*Session
}

// NewMemoryStore creates an in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

// Save stores s.
func (m *MemoryStore) Save(s *Session) error {
	m.sessions[s.Host] = s
	return nil
}

// Load returns the session for host, or nil when none is stored.
func (m *MemoryStore) Load(host string) (*Session, error) {
	return m.sessions[host], nil
}

// Delete removes the session for host.
func (m *MemoryStore) Delete(host string) error {
	delete(m.sessions, host)
	return nil
}

// Close is a no-op for MemoryStore.
func (m *MemoryStore) Close() error {
	return nil
}
