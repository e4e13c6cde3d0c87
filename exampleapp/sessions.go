package exampleapp

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/levinine/browserconnector/message"
)

// SessionCookie is the name of the cookie that carries the session ID.
const SessionCookie = "EXSESSID"

// SessionStore keeps per-session visit counters. A session is open from the first request
// that uses it until CloseAll; closing keeps the data, as a session handler would when it
// writes the session out at the end of a request.
type SessionStore struct {
	visits map[string]int
	open   map[string]bool
	nextID int
	closed int
	lock   sync.Mutex
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{visits: make(map[string]int), open: make(map[string]bool)}
}

// Visit opens the session with the given ID, or a new one if the ID is unknown, and counts
// a visit. It returns the session ID and the visit count.
func (s *SessionStore) Visit(id string) (string, int) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, ok := s.visits[id]; !ok || id == "" {
		s.nextID++
		id = "s" + strconv.Itoa(s.nextID)
	}
	s.visits[id]++
	s.open[id] = true
	return id, s.visits[id]
}

// Open returns the number of open sessions.
func (s *SessionStore) Open() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.open)
}

// Closed returns how many sessions have been closed so far.
func (s *SessionStore) Closed() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.closed
}

// CloseAll closes every open session and returns how many there were.
func (s *SessionStore) CloseAll() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	n := len(s.open)
	s.closed += n
	s.open = make(map[string]bool)
	return n
}

func (a *App) visits(req message.ServerRequest) (message.Response, error) {
	current := req.CookieParams()[SessionCookie]
	id, count := a.sessions.Visit(current)
	resp := message.NewResponse(http.StatusOK).WithJSON(ldvalue.ObjectBuild().
		SetString("session", id).
		SetInt("visits", count).
		Build())
	if id != current {
		resp = resp.WithCookie(&http.Cookie{Name: SessionCookie, Value: id, Path: "/", HttpOnly: true})
	}
	return resp, nil
}
