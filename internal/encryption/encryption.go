package encryption

import (
	"errors"
	"io"
)

var (
	// ErrAlreadyConfigured is returned by Setup when a key pair already exists.
	ErrAlreadyConfigured = errors.New("keys already configured")
	ErrIncompleteKeys    = errors.New("incomplete key pair")
	ErrNotConfigured     = errors.New("keys not configured")
	ErrWrongPassphrase   = errors.New("wrong passphrase")
)

// Encryptor encrypts metadata snapshots before they leave the machine.
// Encryption uses the public key only. Decryption requires a passphrase to
// unlock the private key, producing a DecryptionContext.
type Encryptor interface {
	// Setup generates the key pair once. The private key is stored
	// encrypted with passphrase.
	Setup(passphrase string) error

	// Encrypt reads plaintext from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Unlock decrypts the private key with passphrase. A wrong passphrase
	// is an error.
	Unlock(passphrase string) (DecryptionContext, error)

	// IsConfigured reports whether the key pair exists.
	IsConfigured() bool
}

// DecryptionContext holds an unlocked private key in memory only.
type DecryptionContext interface {
	Decrypt(r io.Reader, w io.Writer) error
}

// KeyHolder is implemented by encryptors whose keys live in files that
// travel with snapshots.
type KeyHolder interface {
	KeyFiles() (public, private string)
}

// Recipienter is implemented by encryptors with a public key to show.
type Recipienter interface {
	Recipient() (string, error)
}
