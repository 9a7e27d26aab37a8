package chat

import (
	"sync"

	"github.com/mountain-chan/security-chat-backend/internal/pkg/errs"
)

// IdentityResolver decodes an opaque credential into a stable user identifier.
// Resolution failure means the connection stays anonymous.
type IdentityResolver interface {
	Resolve(credential string) (string, error)
}

// Presence is the process-wide registry of live connections and the identities
// bound to them. A connection maps to at most one identity; an identity may have
// any number of simultaneous connections. All mutation happens under one lock so
// concurrent connects, auths and disconnects never observe a half-updated table.
type Presence struct {
	mu sync.RWMutex

	// identities maps every registered connection to its bound identity,
	// or to "" while the connection is still anonymous.
	identities map[*Client]string

	// conns is the inverse index: identity to the set of its live connections.
	conns map[string]map[*Client]struct{}

	resolver IdentityResolver
}

// NewPresence returns an empty registry using the given resolver for auth events.
func NewPresence(resolver IdentityResolver) *Presence {
	return &Presence{
		identities: make(map[*Client]string),
		conns:      make(map[string]map[*Client]struct{}),
		resolver:   resolver,
	}
}

// Register records a new live connection with no identity yet. Idempotent.
func (p *Presence) Register(c *Client) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.identities[c]; !ok {
		p.identities[c] = ""
	}
}

// Authenticate resolves the credential and binds the connection to the resulting
// identity in both directions. On resolution failure the connection keeps its
// previous state and an invalid-credential error is returned.
func (p *Presence) Authenticate(c *Client, credential string) (string, *errs.CustomError) {
	identity, err := p.resolver.Resolve(credential)
	if err != nil {
		return "", errs.NewError(errs.ErrInvalidCredential)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Re-authentication rebinds: drop the old inverse entry first.
	if prev := p.identities[c]; prev != "" && prev != identity {
		p.dropConnLocked(prev, c)
	}

	p.identities[c] = identity
	if p.conns[identity] == nil {
		p.conns[identity] = make(map[*Client]struct{})
	}
	p.conns[identity][c] = struct{}{}

	return identity, nil
}

// Unregister removes the connection from both directions. No-op if unknown.
// Room membership cleanup is the caller's responsibility (see Hub.HandleDisconnect).
func (p *Presence) Unregister(c *Client) {
	p.mu.Lock()
	defer p.mu.Unlock()

	identity, ok := p.identities[c]
	if !ok {
		return
	}
	delete(p.identities, c)
	if identity != "" {
		p.dropConnLocked(identity, c)
	}
}

// IdentityOf returns the identity bound to the connection, or "" while anonymous.
// The second result reports whether the connection is registered at all.
func (p *Presence) IdentityOf(c *Client) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	identity, ok := p.identities[c]
	return identity, ok
}

// ConnectionsFor returns a snapshot of the identity's live connections, possibly empty.
func (p *Presence) ConnectionsFor(identity string) []*Client {
	p.mu.RLock()
	defer p.mu.RUnlock()

	set := p.conns[identity]
	res := make([]*Client, 0, len(set))
	for c := range set {
		res = append(res, c)
	}
	return res
}

// IsOnline reports whether the identity has at least one live connection.
func (p *Presence) IsOnline(identity string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.conns[identity]) > 0
}

// Connections returns a snapshot of every registered connection, anonymous ones included.
func (p *Presence) Connections() []*Client {
	p.mu.RLock()
	defer p.mu.RUnlock()

	res := make([]*Client, 0, len(p.identities))
	for c := range p.identities {
		res = append(res, c)
	}
	return res
}

// dropConnLocked removes one connection from an identity's set, deleting the
// set when it empties. Callers hold p.mu.
func (p *Presence) dropConnLocked(identity string, c *Client) {
	set, ok := p.conns[identity]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(p.conns, identity)
	}
}
