package crypto

// WithKey derives a key and hands it to fn. The key is pinned in RAM when
// the OS allows it and is zeroed before WithKey returns; fn must not retain
// the slice.
func WithKey(secret, salt []byte, p KDFParams, fn func(key []byte) error) error {
	key := DeriveKey(secret, salt, p)
	release := pin(key[:])
	defer release()
	defer zero32(&key)
	return fn(key[:])
}

// WithLegacyKey is WithKey for the PBKDF2 derivation of version-less containers.
func WithLegacyKey(secret, salt []byte, fn func(key []byte) error) error {
	key := DeriveLegacyKey(secret, salt)
	release := pin(key)
	defer release()
	defer Zero(key)
	return fn(key)
}
