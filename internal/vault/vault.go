package vault

import (
	"context"
	"errors"
	"io"
)

// Names of the items a snapshot consists of.
const (
	ItemDatabase   = "db"
	ItemPublicKey  = "public_key"
	ItemPrivateKey = "private_key"
)

// ErrNotFound is returned by Get for an item that was never stored.
var ErrNotFound = errors.New("vault item not found")

// Vault stores the named items of a metadata snapshot. Every item carries
// the version it was stored with, so a stale local database can be
// detected before it is written to.
type Vault interface {
	// Put stores the item read from r. size is the number of bytes that
	// will be read from r; a different count is an error.
	Put(ctx context.Context, name string, r io.Reader, size int64, version int64) error

	// Get writes the item to w.
	Get(ctx context.Context, name string, w io.Writer) error

	// Version returns the version of the item, or 0 if it was never stored.
	Version(ctx context.Context, name string) (int64, error)

	// ValidateSetup verifies that the vault is reachable and usable.
	ValidateSetup(ctx context.Context) error
}
