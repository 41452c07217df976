package webnet

import "sync"

// Session is the login state of a Client. A zero Session is logged out.
type Session struct {
	mu         sync.Mutex
	userID     uint64
	token      uint64
	inProgress bool
}

// UserID returns the id issued by the last successful login, or zero.
func (s *Session) UserID() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Token returns the session token issued by the last successful login, or
// zero.
func (s *Session) Token() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// LoggedIn reports whether both a user id and a token are held.
func (s *Session) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID != 0 && s.token != 0
}

// InProgress reports whether a login is running.
func (s *Session) InProgress() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inProgress
}

// Reset forgets the user id and token.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID, s.token = 0, 0
}

// begin marks a login as running. It returns false if one already is.
func (s *Session) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inProgress {
		return false
	}
	s.inProgress = true
	return true
}

func (s *Session) finish() {
	s.mu.Lock()
	s.inProgress = false
	s.mu.Unlock()
}

func (s *Session) set(userID, token uint64) {
	s.mu.Lock()
	s.userID, s.token = userID, token
	s.mu.Unlock()
}
