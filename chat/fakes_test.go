package chat

import (
	"context"
	"errors"
	"sync"
)

type fakeSender struct {
	mu       sync.Mutex
	payloads [][]byte
	fail     bool
}

func (s *fakeSender) Send(p []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("broken pipe")
	}
	s.payloads = append(s.payloads, append([]byte(nil), p...))
	return nil
}

func (s *fakeSender) received() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.payloads))
	for i, p := range s.payloads {
		out[i] = string(p)
	}
	return out
}

func (s *fakeSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payloads)
}

type appendedMessage struct {
	key    string
	sender string
	body   string
}

type fakeStore struct {
	mu        sync.Mutex
	appended  []appendedMessage
	active    map[string]string
	saved     map[string]string
	appendErr error
	activeErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{active: make(map[string]string), saved: make(map[string]string)}
}

func (s *fakeStore) AppendMessage(_ context.Context, chatKey, sender, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	s.appended = append(s.appended, appendedMessage{key: chatKey, sender: sender, body: body})
	return nil
}

func (s *fakeStore) ActiveConversation(_ context.Context, username string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeErr != nil {
		return "", s.activeErr
	}
	return s.active[username], nil
}

func (s *fakeStore) SaveActiveConversation(_ context.Context, username, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved[username] = target
	return nil
}

func (s *fakeStore) IsUserKnown(_ context.Context, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.active[username]
	return ok, nil
}

func (s *fakeStore) ListKnownUsers(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.active))
	for u := range s.active {
		out = append(out, u)
	}
	return out, nil
}

func (s *fakeStore) appendedMessages() []appendedMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]appendedMessage(nil), s.appended...)
}

// fakeRenderer tags fragments so tests can tell conversation pushes from
// controls pushes.
type fakeRenderer struct{}

func (fakeRenderer) ConversationFragment(_ context.Context, chatKey string) ([]byte, error) {
	return []byte("conv:" + chatKey), nil
}

func (fakeRenderer) ControlsFragment(_ context.Context, username string) ([]byte, error) {
	return []byte("controls:" + username), nil
}

type fakeAvatars struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (a *fakeAvatars) EnsureAvatar(username string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, username)
	return a.err
}

func (a *fakeAvatars) called() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.calls...)
}
