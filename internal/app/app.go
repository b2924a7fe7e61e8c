package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"hoard/internal/config"
	"hoard/internal/database"
	"hoard/internal/database/migrations"
	"hoard/internal/database/sqlc"
	"hoard/internal/encryption"
	"hoard/internal/fs"
	"hoard/internal/hoard"
	"hoard/internal/vault"
)

// HoardApp is the application layer between the CLI and the hoard core.
// It constructs all dependencies from config, resolves users and logical
// paths given as raw strings, and runs each command in a session while
// holding the lock of the repository it touches.
type HoardApp struct {
	cfg       *config.Config
	db        *database.DB
	vault     vault.Vault
	encryptor encryption.Encryptor
	locks     *hoard.KeyedMutex
	env       hoard.Env
	logger    *slog.Logger
	logFile   *os.File

	mu sync.Mutex // guards op
	op *Operation
}

// NewHoardApp creates a fully wired HoardApp from the given config.
// operation identifies the CLI command being run (e.g. "MakeDirectory", "PutFile").
// The caller must call Close when done.
func NewHoardApp(ctx context.Context, cfg *config.Config, operation string) (*HoardApp, error) {
	for _, dir := range []string{cfg.Storage.Root, cfg.CacheDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	if err := prepareSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	// Without a vault there are no snapshots to compare against.
	var v vault.Vault
	if len(cfg.Vaults) > 0 {
		v, err = vault.NewVaultFromConfig(ctx, cfg.Vaults[0])
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("creating vault: %w", err)
		}
		if err := checkSnapshotVersion(ctx, db, v); err != nil {
			db.Close()
			return nil, err
		}
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID, cfg.Logging.Level)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	return &HoardApp{
		cfg:       cfg,
		db:        db,
		vault:     v,
		encryptor: enc,
		locks:     hoard.NewKeyedMutex(),
		env: hoard.Env{
			WorkingDir:  cfg.WorkingDir,
			StorageRoot: cfg.Storage.Root,
			Ignore:      fs.NewIgnoreMatcher(cfg.Storage.Ignore),
			Clock:       hoard.RealClock{},
			IDs:         hoard.UUIDGenerator{},
			Logger:      &slogAdapter{l: logger},
		},
		logger:  logger,
		logFile: logFile,
		op:      NewOperation(operation, ""),
	}, nil
}

// prepareSchema migrates a database no migration was ever applied to and
// otherwise requires its schema to be current.
func prepareSchema(db *database.DB) error {
	_, err := db.SchemaStatus()
	if errors.Is(err, migrations.ErrNoSchema) {
		if err := db.Migrate(); err != nil {
			return fmt.Errorf("initializing database schema: %w", err)
		}
		return nil
	}
	if err := db.CheckMigrations(); err != nil {
		return fmt.Errorf("database schema out of date (run 'hoard db migrate'): %w", err)
	}
	return nil
}

// checkSnapshotVersion refuses to work on a local database older than the
// last snapshot in the vault: writing to it would fork the history.
func checkSnapshotVersion(ctx context.Context, db *database.DB, v vault.Vault) error {
	remoteVersion, err := v.Version(ctx, vault.ItemDatabase)
	if err != nil {
		return fmt.Errorf("checking snapshot version: %w", err)
	}

	localMax, err := db.MaxOperationID(ctx)
	if err != nil {
		return fmt.Errorf("checking local metadata version: %w", err)
	}

	if remoteVersion > localMax {
		return fmt.Errorf("local database is behind snapshot (local=%d, snapshot=%d): run 'hoard snapshot pull'", localMax, remoteVersion)
	}
	return nil
}

// Migrate opens the database described by cfg and applies every pending
// migration. It returns the resulting schema status.
func Migrate(cfg *config.Config) (migrations.Status, error) {
	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		return migrations.Status{}, fmt.Errorf("creating database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return migrations.Status{}, fmt.Errorf("migrating database: %w", err)
	}
	return db.SchemaStatus()
}

// SchemaStatus reports the schema version of the database described by cfg
// without changing it.
func SchemaStatus(cfg *config.Config) (migrations.Status, error) {
	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		return migrations.Status{}, fmt.Errorf("creating database: %w", err)
	}
	defer db.Close()

	return db.SchemaStatus()
}

// persistOperation saves the operation to the database, giving it an auto-increment ID.
// This should only be called for DB-mutating commands, before any session is opened.
func (a *HoardApp) persistOperation(ctx context.Context, parameters string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.op.Persisted() {
		return nil
	}
	if parameters != "" {
		a.op.Parameters = parameters
	}
	dbOp, err := a.db.CreateOperation(ctx, a.op.Operation, a.op.Parameters, a.env.Clock.Now())
	if err != nil {
		return fmt.Errorf("persisting operation: %w", err)
	}
	a.op.ID = dbOp.ID
	return nil
}

// inSession runs fn with the queries of a new session while holding the
// lock of userName's repository. The session is committed only when fn
// succeeds.
func (a *HoardApp) inSession(ctx context.Context, userName string, fn func(q sqlc.Querier) error) error {
	unlock, err := a.locks.Lock(ctx, strings.ToLower(userName))
	if err != nil {
		return fmt.Errorf("waiting for repository of %q: %w", userName, err)
	}
	defer unlock()

	session, err := a.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Rollback(); err != nil {
			a.logger.Error("rolling back session", "user", userName, "error", err)
		}
	}()

	if err := fn(session.Queries()); err != nil {
		return err
	}
	return session.Commit()
}

// mutate is inSession for commands that change a repository: the command
// is recorded in the operation log first and marked failed when fn fails.
func (a *HoardApp) mutate(ctx context.Context, userName, parameters string, fn func(q sqlc.Querier) error) error {
	if err := a.persistOperation(ctx, parameters); err != nil {
		return err
	}
	if err := a.inSession(ctx, userName, fn); err != nil {
		a.mu.Lock()
		a.op.Fail()
		a.mu.Unlock()
		return err
	}
	return nil
}

// Update runs fn on the repository owned by userName and commits the row
// changes fn made when it returns nil.
func (a *HoardApp) Update(ctx context.Context, userName, parameters string, fn func(tree *hoard.Tree) error) error {
	return a.mutate(ctx, userName, parameters, func(q sqlc.Querier) error {
		tree, err := a.openTree(ctx, q, userName)
		if err != nil {
			return err
		}
		return fn(tree)
	})
}

// View runs fn on the repository owned by userName. fn must not mutate it.
func (a *HoardApp) View(ctx context.Context, userName string, fn func(tree *hoard.Tree) error) error {
	return a.inSession(ctx, userName, func(q sqlc.Querier) error {
		tree, err := a.openTree(ctx, q, userName)
		if err != nil {
			return err
		}
		return fn(tree)
	})
}

func (a *HoardApp) openTree(ctx context.Context, q sqlc.Querier, userName string) (*hoard.Tree, error) {
	user, err := hoard.FindUser(ctx, q, userName)
	if err != nil {
		return nil, err
	}
	return hoard.OpenRepository(ctx, q, a.env, user)
}

// History returns the most recent operations, newest first.
func (a *HoardApp) History(ctx context.Context, limit int) ([]*sqlc.Operation, error) {
	return a.db.ListOperations(ctx, limit)
}

// Close finalizes the operation and closes all resources.
// For persisted operations: finishes the operation record and pushes a
// snapshot to the vault, versioned by the operation ID.
// For non-persisted operations: just closes the database.
func (a *HoardApp) Close() error {
	ctx := context.Background()
	var firstErr error

	if a.op.Persisted() {
		if err := a.db.FinishOperation(ctx, a.op.ID, a.op.Status, a.env.Clock.Now()); err != nil {
			firstErr = fmt.Errorf("finishing operation: %w", err)
		}

		switch {
		case a.vault == nil:
		case !a.encryptor.IsConfigured():
			a.logger.Warn("snapshot skipped: keys not configured", "operation", a.op.ID)
		default:
			if err := a.pushSnapshot(ctx, a.op.ID); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}

	if err := a.db.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
