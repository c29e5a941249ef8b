// Package identity abstracts the authentication provider consumed by the
// synchronizer and scheduler. An anonymous identity is treated identically to
// no identity for sync-gating purposes.
package identity

// Identity is the opaque user identity issued by the auth provider.
type Identity struct {
	UID       string
	Anonymous bool
}

// Provider exposes the current identity and change notification.
type Provider interface {
	// Current returns the identity and whether anyone is signed in.
	Current() (Identity, bool)

	// OnChange registers a callback invoked on every identity transition.
	// The returned function unsubscribes.
	OnChange(fn func(Identity, bool)) (unsubscribe func())
}

// CanSync reports whether sync operations may reach the remote stores, and
// the identity to namespace them under. Anonymous counts as signed out.
func CanSync(p Provider) (Identity, bool) {
	id, ok := p.Current()
	if !ok || id.Anonymous {
		return Identity{}, false
	}
	return id, true
}
