package encryption

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"

	"hoard/internal/config"
)

// maxKeyFileSize bounds what is read from a key file. Both keys are a
// single line; anything larger is not a hoard key file.
const maxKeyFileSize = 64 << 10

// AgeEncryptor seals snapshots for one X25519 recipient. The public key
// lives in plaintext so every run can encrypt without a prompt; the
// identity is wrapped with a scrypt passphrase and only opened by Unlock
// when a snapshot is pulled.
type AgeEncryptor struct {
	publicKeyPath  string
	privateKeyPath string
}

var (
	_ Encryptor   = (*AgeEncryptor)(nil)
	_ KeyHolder   = (*AgeEncryptor)(nil)
	_ Recipienter = (*AgeEncryptor)(nil)
)

func NewAgeEncryptor(cfg config.EncryptionConfig) *AgeEncryptor {
	return &AgeEncryptor{
		publicKeyPath:  cfg.PublicKeyPath,
		privateKeyPath: cfg.PrivateKeyPath,
	}
}

// KeyFiles returns the locations of the public and the wrapped private key.
// Snapshots carry both so a new machine can pull with the passphrase alone.
func (e *AgeEncryptor) KeyFiles() (public, private string) {
	return e.publicKeyPath, e.privateKeyPath
}

// Setup creates the key pair. Both files are written under temporary
// names and renamed into place, private key first, so an interrupted
// setup never leaves a public key whose identity is gone. A pair that is
// already there is kept: every pushed snapshot depends on it.
func (e *AgeEncryptor) Setup(passphrase string) error {
	if passphrase == "" {
		return errors.New("empty passphrase")
	}
	pubExists, privExists := fileExists(e.publicKeyPath), fileExists(e.privateKeyPath)
	switch {
	case pubExists && privExists:
		return ErrAlreadyConfigured
	case pubExists || privExists:
		return fmt.Errorf("%w: only one of %s and %s exists; pull a snapshot or remove it",
			ErrIncompleteKeys, e.publicKeyPath, e.privateKeyPath)
	}

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return fmt.Errorf("generating key pair: %w", err)
	}
	wrap, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return fmt.Errorf("creating scrypt recipient: %w", err)
	}

	var sealed bytes.Buffer
	w, err := age.Encrypt(&sealed, wrap)
	if err != nil {
		return fmt.Errorf("wrapping private key: %w", err)
	}
	if _, err := io.WriteString(w, identity.String()+"\n"); err != nil {
		return fmt.Errorf("wrapping private key: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("wrapping private key: %w", err)
	}

	if err := writeKeyFile(e.privateKeyPath, sealed.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing private key: %w", err)
	}
	public := []byte(identity.Recipient().String() + "\n")
	if err := writeKeyFile(e.publicKeyPath, public, 0o644); err != nil {
		os.Remove(e.privateKeyPath)
		return fmt.Errorf("writing public key: %w", err)
	}
	return nil
}

func (e *AgeEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	recipient, err := e.recipient()
	if err != nil {
		return err
	}

	sealer, err := age.Encrypt(w, recipient)
	if err != nil {
		return fmt.Errorf("starting encryption: %w", err)
	}
	if _, err := io.Copy(sealer, r); err != nil {
		return fmt.Errorf("encrypting: %w", err)
	}
	if err := sealer.Close(); err != nil {
		return fmt.Errorf("finishing encryption: %w", err)
	}
	return nil
}

// Unlock opens the wrapped identity. A passphrase that does not open it
// yields ErrWrongPassphrase.
func (e *AgeEncryptor) Unlock(passphrase string) (DecryptionContext, error) {
	sealed, err := readKeyFile(e.privateKeyPath)
	if err != nil {
		return nil, err
	}

	scrypt, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt identity: %w", err)
	}
	r, err := age.Decrypt(bytes.NewReader(sealed), scrypt)
	if err != nil {
		var noMatch *age.NoIdentityMatchError
		if errors.As(err, &noMatch) || errors.Is(err, age.ErrIncorrectIdentity) {
			return nil, ErrWrongPassphrase
		}
		return nil, fmt.Errorf("opening private key %s: %w", e.privateKeyPath, err)
	}
	plain, err := io.ReadAll(io.LimitReader(r, maxKeyFileSize))
	if err != nil {
		return nil, fmt.Errorf("opening private key %s: %w", e.privateKeyPath, err)
	}

	identity, err := age.ParseX25519Identity(strings.TrimSpace(string(plain)))
	if err != nil {
		return nil, fmt.Errorf("parsing private key %s: %w", e.privateKeyPath, err)
	}
	return &AgeDecryptionContext{identity: identity}, nil
}

func (e *AgeEncryptor) IsConfigured() bool {
	return fileExists(e.publicKeyPath) && fileExists(e.privateKeyPath)
}

// Recipient returns the public key in its age1... form.
func (e *AgeEncryptor) Recipient() (string, error) {
	r, err := e.recipient()
	if err != nil {
		return "", err
	}
	return r.String(), nil
}

func (e *AgeEncryptor) recipient() (*age.X25519Recipient, error) {
	data, err := readKeyFile(e.publicKeyPath)
	if err != nil {
		return nil, err
	}
	r, err := age.ParseX25519Recipient(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("parsing public key %s: %w", e.publicKeyPath, err)
	}
	return r, nil
}

// AgeDecryptionContext holds an unlocked identity in memory.
type AgeDecryptionContext struct {
	identity age.Identity
}

var _ DecryptionContext = (*AgeDecryptionContext)(nil)

func (c *AgeDecryptionContext) Decrypt(r io.Reader, w io.Writer) error {
	plain, err := age.Decrypt(r, c.identity)
	if err != nil {
		return fmt.Errorf("snapshot was not sealed for this key: %w", err)
	}
	if _, err := io.Copy(w, plain); err != nil {
		return fmt.Errorf("decrypting: %w", err)
	}
	return nil
}

// readKeyFile maps a missing key to ErrNotConfigured.
func readKeyFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s is missing", ErrNotConfigured, path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading key %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxKeyFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading key %s: %w", path, err)
	}
	if len(data) > maxKeyFileSize {
		return nil, fmt.Errorf("key %s is larger than %d bytes", path, maxKeyFileSize)
	}
	return data, nil
}

func writeKeyFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".key-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
