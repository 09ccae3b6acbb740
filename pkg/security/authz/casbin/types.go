// Package casbin provides the Casbin-backed policy engine adapter for
// admin-guard. It exposes the enforce / subject-permission / replacement
// operations the admin authorization layer consumes, and ships a default
// RBAC model with resource-hierarchy support.
package casbin

// Policy represents a Casbin policy rule as persisted by the adapter.
type Policy struct {
	PType string `json:"ptype"` // Policy type (p, g, g2)
	V0    string `json:"v0"`    // Subject (user or role key)
	V1    string `json:"v1"`    // Resource unique id
	V2    string `json:"v2"`    // Action key (field-level or page-level)
	V3    string `json:"v3"`    // Fallback action key
	V4    string `json:"v4"`    // Reserved
	V5    string `json:"v5"`    // Reserved
}

// Watcher synchronizes policy state across instances.
type Watcher interface {
	// SetUpdateCallback sets the callback invoked when another instance
	// publishes a policy update.
	SetUpdateCallback(callback func(string))

	// Update publishes a policy update notification.
	Update() error

	// Close releases the watcher resources.
	Close()
}
