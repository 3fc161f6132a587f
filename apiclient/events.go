package apiclient

import (
	"net/url"
	"sync"
)

// LoginPath is where the application shell sends the browser once a session
// has been invalidated.
const LoginPath = "/login"

// Reason says why the backend rejected a request.
type Reason string

const (
	// ReasonUnauthenticated is a 401: token missing, expired or revoked.
	ReasonUnauthenticated Reason = "unauthenticated"
	// ReasonAdminRequired is a 403: authenticated but not an admin.
	ReasonAdminRequired Reason = "admin_required"
)

// Invalidation is emitted each time the interceptor clears the session.
type Invalidation struct {
	Reason Reason
	Status int
	Method string
	Path   string
}

// LoginURL is the navigation target for this invalidation.
func (i Invalidation) LoginURL() string {
	return LoginURL(i.Reason)
}

// LoginURL returns /login, or /login?error=admin_required for a 403.
func LoginURL(reason Reason) string {
	if reason == ReasonAdminRequired {
		return LoginPath + "?" + url.Values{"error": {string(ReasonAdminRequired)}}.Encode()
	}
	return LoginPath
}

// Listener receives invalidation events. Listeners run synchronously on the
// goroutine that issued the request and must not block.
type Listener func(Invalidation)

type listenerBus struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[int]Listener
}

func newListenerBus() *listenerBus {
	return &listenerBus{listeners: make(map[int]Listener)}
}

func (b *listenerBus) subscribe(l Listener) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = l
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.listeners, id)
	}
}

func (b *listenerBus) emit(inv Invalidation) {
	b.mu.RLock()
	listeners := make([]Listener, 0, len(b.listeners))
	for _, l := range b.listeners {
		listeners = append(listeners, l)
	}
	b.mu.RUnlock()

	for _, l := range listeners {
		l(inv)
	}
}
