package encryption

import (
	"fmt"
	"io"
)

// NoneEncryptor stores snapshots in plaintext. It is selected with
// encryption type "none" and needs no keys.
type NoneEncryptor struct{}

var _ Encryptor = NoneEncryptor{}

func (NoneEncryptor) Setup(string) error { return nil }

func (NoneEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

func (NoneEncryptor) Unlock(string) (DecryptionContext, error) {
	return noneDecryptionContext{}, nil
}

func (NoneEncryptor) IsConfigured() bool { return true }

type noneDecryptionContext struct{}

func (noneDecryptionContext) Decrypt(r io.Reader, w io.Writer) error {
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}
