package qjob

// BackendConfig is a flat, string-keyed configuration container for a
// driver instance. It is the product of merging explicit caller options,
// environment-sourced secrets, and per-backend defaults, and is treated as
// immutable for the lifetime of the driver instance that resolved it.
type BackendConfig map[string]string

// Value returns the value for the specified key or the empty string if the
// key is absent.
func (b BackendConfig) Value(key string) string {
	return b[key]
}

// Exists returns a bool indicating if the specified key is present. Absence
// of an optional key is a valid, checked state, distinct from an empty
// value.
func (b BackendConfig) Exists(key string) bool {
	_, ok := b[key]
	return ok
}

// ValueOrDefault returns the value for the specified key or the provided
// default if the key is absent.
func (b BackendConfig) ValueOrDefault(key, defaultValue string) string {
	if value, ok := b[key]; ok {
		return value
	}
	return defaultValue
}

// Clone returns a copy of the BackendConfig that may be mutated without
// affecting the original.
func (b BackendConfig) Clone() BackendConfig {
	clone := BackendConfig{}
	for k, v := range b {
		clone[k] = v
	}
	return clone
}
