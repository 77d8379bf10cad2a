package kvstore

import "errors"

// ErrNotFound is returned when a key has no value.
var ErrNotFound = errors.New("not found")

// Well-known keys shared with the browser client. The shapes of the values
// stored under these keys are part of the client contract and must not change.
const (
	UserIDKey         = "prepflow_user_id"
	VariantKeyPrefix  = "prepflow_variant_"
	CountryKey        = "prepflow-country"
	LanguageKey       = "prepflow_language"
	AuthInProgressKey = "PF_AUTH_IN_PROGRESS"
)

// VariantKey returns the storage key holding a user's variant assignment.
// The key is scoped by user only, matching the client's localStorage layout.
func VariantKey(userID string) string {
	return VariantKeyPrefix + userID
}

// Store is the client-storage abstraction: a flat string key-value space
// mirroring browser localStorage semantics.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}
