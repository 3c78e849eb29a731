package memory

import "testing"

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()

	session := store.GetOrCreate("show-1")
	if session == nil {
		t.Fatalf("expected session")
	}
	if _, ok := store.Get("show-1"); !ok {
		t.Fatalf("expected session present")
	}

	store.DeleteIfIdle("show-1")
	if _, ok := store.Get("show-1"); ok {
		t.Fatalf("expected session removed when idle")
	}
}

func TestSessionStoreKeepsSubscribedSessions(t *testing.T) {
	store := NewSessionStore()
	session := store.GetOrCreate("show-1")

	_, cancel := session.Subscribe()
	store.DeleteIfIdle("show-1")
	if _, ok := store.Get("show-1"); !ok {
		t.Fatalf("expected session kept while a renderer is subscribed")
	}

	cancel()
	store.DeleteIfIdle("show-1")
	if _, ok := store.Get("show-1"); ok {
		t.Fatalf("expected session removed after last unsubscribe")
	}
}
