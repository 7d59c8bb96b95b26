package cartclient

import "sync"

// Change describes an auth transition delivered to subscribers.
type Change struct {
	AccountKey    string
	Token         string
	Authenticated bool
}

// Session is the observable authentication state. Subscribers are notified
// synchronously on every transition; nothing polls.
type Session struct {
	mu         sync.Mutex
	accountKey string
	token      string
	subs       []func(Change)
}

func NewSession() *Session {
	return &Session{}
}

// Subscribe registers a transition callback. Callbacks run on the goroutine
// that triggered the transition.
func (s *Session) Subscribe(fn func(Change)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Login records the authenticated account and notifies subscribers once.
// A repeated login for the same account is a no-op.
func (s *Session) Login(accountKey, token string) {
	s.mu.Lock()
	if s.accountKey == accountKey {
		s.token = token
		s.mu.Unlock()
		return
	}
	s.accountKey = accountKey
	s.token = token
	subs := append([]func(Change){}, s.subs...)
	s.mu.Unlock()

	ch := Change{AccountKey: accountKey, Token: token, Authenticated: true}
	for _, fn := range subs {
		fn(ch)
	}
}

// Logout clears the session and notifies subscribers.
func (s *Session) Logout() {
	s.mu.Lock()
	if s.accountKey == "" {
		s.mu.Unlock()
		return
	}
	s.accountKey = ""
	s.token = ""
	subs := append([]func(Change){}, s.subs...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(Change{})
	}
}

// Token returns the current bearer token, empty when anonymous.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Session) AccountKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accountKey
}
