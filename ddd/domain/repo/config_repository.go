package repo

import "context"

// SettingsRepository persists the single encode-settings document as a flat
// field map. Load returns an empty map when nothing is stored.
type SettingsRepository interface {
	Load(ctx context.Context) (map[string]string, error)
	Save(ctx context.Context, fields map[string]string) error
}

// AdminRepository persists the admin membership set.
type AdminRepository interface {
	// Add inserts a member. Returns false when the user was already present.
	Add(ctx context.Context, userID int64) (bool, error)

	// Remove deletes a member. Returns false when the user was absent.
	Remove(ctx context.Context, userID int64) (bool, error)

	List(ctx context.Context) ([]int64, error)
	IsMember(ctx context.Context, userID int64) (bool, error)
}

// ThumbnailRepository persists per-user thumbnail file references,
// last-writer-wins.
type ThumbnailRepository interface {
	Set(ctx context.Context, userID int64, fileID string) error

	// Get returns the stored file id, empty when none is saved.
	Get(ctx context.Context, userID int64) (string, error)

	// Delete removes the slot. Returns false when nothing was stored.
	Delete(ctx context.Context, userID int64) (bool, error)
}
