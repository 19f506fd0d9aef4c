package session

import (
	"testing"

	"github.com/luodachuixg/nola-console/internal/model"
	"github.com/luodachuixg/nola-console/internal/securestore"
)

// memStore is an in-memory securestore.Store for tests that don't care
// about encryption.
type memStore struct {
	values map[string]string
}

func newMemStore() *memStore { return &memStore{values: make(map[string]string)} }

func (m *memStore) Put(key, value string) error { m.values[key] = value; return nil }
func (m *memStore) Get(key string) (string, error) { return m.values[key], nil }
func (m *memStore) Remove(key string) error {
	delete(m.values, key)
	return nil
}

func TestSetUserDerivesFields(t *testing.T) {
	s := New(newMemStore(), "")

	users := []*model.User{
		{Username: "admin", Token: "tok-1"},
		nil,
		{Username: "admin", Token: "tok-2"},
		{Username: "other", Token: "tok-3"},
		nil,
	}

	for _, u := range users {
		if err := s.SetUser(u); err != nil {
			t.Fatalf("SetUser() error = %v", err)
		}
		got := s.Current()
		if got.IsLogin != (u != nil) {
			t.Errorf("IsLogin = %v, want %v", got.IsLogin, u != nil)
		}
		wantToken := ""
		if u != nil {
			wantToken = u.Token
		}
		if got.Token != wantToken {
			t.Errorf("Token = %q, want %q", got.Token, wantToken)
		}
		if (got.User != nil) != (u != nil) {
			t.Errorf("User presence = %v, want %v", got.User != nil, u != nil)
		}
	}
}

func TestStartsEmpty(t *testing.T) {
	s := New(newMemStore(), "")
	got := s.Current()
	if got.IsLogin || got.User != nil || got.Token != "" {
		t.Errorf("new store not empty: %+v", got)
	}
}

func TestHydrationRoundTrip(t *testing.T) {
	kv, err := securestore.NewFileStore(t.TempDir(), "secret")
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	s1 := New(kv, "")
	user := &model.User{Username: "admin", Email: "a@b.c", DisplayName: "Admin", Token: "tok-abc"}
	if err := s1.SetUser(user); err != nil {
		t.Fatalf("SetUser() error = %v", err)
	}

	// A fresh store over the same backing file sees the same session.
	s2 := New(kv, "")
	got := s2.Current()
	if !got.IsLogin {
		t.Fatal("rehydrated session not logged in")
	}
	if got.Token != "tok-abc" {
		t.Errorf("Token = %q, want tok-abc", got.Token)
	}
	if got.User == nil || got.User.Username != "admin" {
		t.Errorf("User = %+v, want admin", got.User)
	}
}

func TestHydrationCorruptBlobStartsEmpty(t *testing.T) {
	kv := newMemStore()
	kv.values[DefaultKey] = "{not json"

	s := New(kv, "")
	if s.Current().IsLogin {
		t.Error("store hydrated from corrupt blob should start empty")
	}
}

func TestLogoutPersistsClearedState(t *testing.T) {
	kv, err := securestore.NewFileStore(t.TempDir(), "secret")
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	s := New(kv, "")
	if err := s.SetUser(&model.User{Username: "admin", Token: "tok"}); err != nil {
		t.Fatalf("SetUser() error = %v", err)
	}
	if err := s.SetUser(nil); err != nil {
		t.Fatalf("SetUser(nil) error = %v", err)
	}

	if New(kv, "").Current().IsLogin {
		t.Error("logged-out session survived rehydration")
	}
}

func TestSubscribeNotifiesInOrder(t *testing.T) {
	s := New(newMemStore(), "")

	var order []string
	s.Subscribe(func(sess Session) { order = append(order, "first:"+sess.Token) })
	s.Subscribe(func(sess Session) { order = append(order, "second:"+sess.Token) })

	if err := s.SetUser(&model.User{Username: "a", Token: "t1"}); err != nil {
		t.Fatalf("SetUser() error = %v", err)
	}
	if err := s.SetUser(nil); err != nil {
		t.Fatalf("SetUser(nil) error = %v", err)
	}

	want := []string{"first:t1", "second:t1", "first:", "second:"}
	if len(order) != len(want) {
		t.Fatalf("notifications = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("notification[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestSubscribeCancel(t *testing.T) {
	s := New(newMemStore(), "")

	calls := 0
	cancel := s.Subscribe(func(Session) { calls++ })

	if err := s.SetUser(&model.User{Username: "a", Token: "t"}); err != nil {
		t.Fatalf("SetUser() error = %v", err)
	}
	cancel()
	if err := s.SetUser(nil); err != nil {
		t.Fatalf("SetUser(nil) error = %v", err)
	}

	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no notifications after cancel)", calls)
	}
}

func TestCurrentObservesNewValueDuringNotify(t *testing.T) {
	s := New(newMemStore(), "")

	var seen Session
	s.Subscribe(func(Session) { seen = s.Current() })

	if err := s.SetUser(&model.User{Username: "a", Token: "t1"}); err != nil {
		t.Fatalf("SetUser() error = %v", err)
	}
	if seen.Token != "t1" {
		t.Errorf("Current() during notify = %q, want t1", seen.Token)
	}
}
