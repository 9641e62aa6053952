package domain

// CredentialStore is a durable string key/value store for session and cache data.
type CredentialStore interface {
	GetString(key string) (string, bool)
	SetString(key, value string) error
}

// Well-known store keys
const (
	KeyAccessToken      = "access_token"
	KeyUserID           = "user_id"
	KeyDeviceID         = "device_id"
	KeyCachedCategories = "pref_cached_categories"
	KeyCachedGenres     = "pref_cached_genres"
)
