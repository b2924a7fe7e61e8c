package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"hoard/internal/config"
	"hoard/internal/database"
	"hoard/internal/encryption"
	"hoard/internal/vault"
)

var errNoVault = errors.New("no vaults configured")

// PushSnapshot uploads an encrypted copy of the database to the vault,
// versioned by the latest operation ID, and returns that version.
func (a *HoardApp) PushSnapshot(ctx context.Context) (int64, error) {
	if a.vault == nil {
		return 0, errNoVault
	}
	if !a.encryptor.IsConfigured() {
		return 0, fmt.Errorf("%w: run 'hoard keys init'", encryption.ErrNotConfigured)
	}
	version, err := a.db.MaxOperationID(ctx)
	if err != nil {
		return 0, err
	}
	if version == 0 {
		return 0, errors.New("nothing to snapshot: no operation recorded yet")
	}
	return version, a.pushSnapshot(ctx, version)
}

// pushSnapshot stores the key files first and the database last, so the
// database version only moves once the whole snapshot is in the vault.
func (a *HoardApp) pushSnapshot(ctx context.Context, version int64) error {
	tmpDir, err := os.MkdirTemp(a.cfg.CacheDir(), "snapshot-*")
	if err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	plain := filepath.Join(tmpDir, database.FileName)
	if err := a.db.BackupTo(ctx, plain); err != nil {
		return err
	}
	sealed := plain + ".age"
	if err := encryptFile(a.encryptor, plain, sealed); err != nil {
		return err
	}

	if kh, ok := a.encryptor.(encryption.KeyHolder); ok {
		public, private := kh.KeyFiles()
		if err := putFile(ctx, a.vault, vault.ItemPublicKey, public, version); err != nil {
			return err
		}
		if err := putFile(ctx, a.vault, vault.ItemPrivateKey, private, version); err != nil {
			return err
		}
	}
	if err := putFile(ctx, a.vault, vault.ItemDatabase, sealed, version); err != nil {
		return err
	}

	a.logger.Info("snapshot pushed", "version", version)
	return nil
}

func encryptFile(enc encryption.Encryptor, src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	if err := enc.Encrypt(in, out); err != nil {
		out.Close()
		return fmt.Errorf("encrypting snapshot: %w", err)
	}
	return out.Close()
}

// putFile opens the file at path and stores it in the vault as name.
func putFile(ctx context.Context, v vault.Vault, name, path string, version int64) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s for upload: %w", name, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", name, err)
	}

	if err := v.Put(ctx, name, f, info.Size(), version); err != nil {
		return fmt.Errorf("uploading %s to vault: %w", name, err)
	}
	return nil
}

// PullSnapshot replaces the local database with the latest snapshot in the
// first configured vault and returns its version. Key files missing locally
// are restored from the vault first. An existing database is only replaced
// with force.
func PullSnapshot(ctx context.Context, cfg *config.Config, passphrase string, force bool) (int64, error) {
	if cfg.Database.Type != "sqlite" {
		return 0, fmt.Errorf("pulling a snapshot needs a sqlite database, not %q", cfg.Database.Type)
	}
	if len(cfg.Vaults) == 0 {
		return 0, errNoVault
	}
	v, err := vault.NewVaultFromConfig(ctx, cfg.Vaults[0])
	if err != nil {
		return 0, fmt.Errorf("creating vault: %w", err)
	}

	version, err := v.Version(ctx, vault.ItemDatabase)
	if err != nil {
		return 0, fmt.Errorf("checking snapshot version: %w", err)
	}
	if version == 0 {
		return 0, fmt.Errorf("vault %s holds no snapshot", cfg.Vaults[0].Name)
	}

	dbPath := filepath.Join(cfg.Database.DataDir, database.FileName)
	if _, err := os.Stat(dbPath); err == nil && !force {
		return 0, fmt.Errorf("%s exists: pull with force to replace it", dbPath)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return 0, fmt.Errorf("creating encryptor: %w", err)
	}
	if kh, ok := enc.(encryption.KeyHolder); ok {
		public, private := kh.KeyFiles()
		if err := restoreKey(ctx, v, vault.ItemPublicKey, public, 0o644); err != nil {
			return 0, err
		}
		if err := restoreKey(ctx, v, vault.ItemPrivateKey, private, 0o600); err != nil {
			return 0, err
		}
	}
	dc, err := enc.Unlock(passphrase)
	if err != nil {
		return 0, fmt.Errorf("unlocking keys: %w", err)
	}

	if err := os.MkdirAll(cfg.Database.DataDir, 0o755); err != nil {
		return 0, fmt.Errorf("creating data_dir: %w", err)
	}
	tmpDir, err := os.MkdirTemp(cfg.Database.DataDir, ".pull-*")
	if err != nil {
		return 0, fmt.Errorf("creating pull directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	sealed := filepath.Join(tmpDir, database.FileName+".age")
	if err := getFile(ctx, v, vault.ItemDatabase, sealed, 0o600); err != nil {
		return 0, err
	}

	plain := filepath.Join(tmpDir, database.FileName)
	in, err := os.Open(sealed)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", sealed, err)
	}
	defer in.Close()
	out, err := os.OpenFile(plain, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", plain, err)
	}
	if err := dc.Decrypt(in, out); err != nil {
		out.Close()
		return 0, fmt.Errorf("decrypting snapshot: %w", err)
	}
	if err := out.Close(); err != nil {
		return 0, fmt.Errorf("writing %s: %w", plain, err)
	}

	if err := os.Rename(plain, dbPath); err != nil {
		return 0, fmt.Errorf("replacing %s: %w", dbPath, err)
	}
	return version, nil
}

// restoreKey fetches a key file from the vault unless it exists locally.
func restoreKey(ctx context.Context, v vault.Vault, name, path string, perm os.FileMode) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating key directory: %w", err)
	}
	return getFile(ctx, v, name, path, perm)
}

func getFile(ctx context.Context, v vault.Vault, name, path string, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := v.Get(ctx, name, f); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("downloading %s from vault: %w", name, err)
	}
	return f.Close()
}

// SetupKeys generates the key pair snapshots are encrypted with. It returns
// the public key when the encryptor has one to show.
func SetupKeys(cfg *config.Config, passphrase string) (string, error) {
	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return "", fmt.Errorf("creating encryptor: %w", err)
	}
	if err := enc.Setup(passphrase); err != nil {
		return "", fmt.Errorf("setting up keys: %w", err)
	}
	if r, ok := enc.(encryption.Recipienter); ok {
		return r.Recipient()
	}
	return "", nil
}

// CheckVaults verifies that every configured vault is reachable.
func CheckVaults(ctx context.Context, cfg *config.Config) error {
	if len(cfg.Vaults) == 0 {
		return errNoVault
	}
	for _, vc := range cfg.Vaults {
		v, err := vault.NewVaultFromConfig(ctx, vc)
		if err != nil {
			return fmt.Errorf("creating vault %s: %w", vc.Name, err)
		}
		if err := v.ValidateSetup(ctx); err != nil {
			return fmt.Errorf("vault %s: %w", vc.Name, err)
		}
	}
	return nil
}
