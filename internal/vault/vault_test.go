package vault

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

// testVaultContract runs the behaviour every Vault implementation shares.
func testVaultContract(t *testing.T, newVault func(t *testing.T) Vault) {
	t.Helper()
	ctx := context.Background()

	t.Run("put and get", func(t *testing.T) {
		tests := []struct {
			name string
			data string
		}{
			{name: "simple", data: "hello world"},
			{name: "empty", data: ""},
			{name: "large", data: strings.Repeat("x", 10000)},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				v := newVault(t)
				if err := v.Put(ctx, ItemDatabase, strings.NewReader(tt.data), int64(len(tt.data)), 3); err != nil {
					t.Fatalf("Put() error = %v", err)
				}

				var buf bytes.Buffer
				if err := v.Get(ctx, ItemDatabase, &buf); err != nil {
					t.Fatalf("Get() error = %v", err)
				}
				if buf.String() != tt.data {
					t.Errorf("Get() = %q, want %q", buf.String(), tt.data)
				}
			})
		}
	})

	t.Run("size mismatch", func(t *testing.T) {
		v := newVault(t)
		err := v.Put(ctx, ItemDatabase, strings.NewReader("hello"), 100, 1)
		if err == nil {
			t.Error("Put() error = nil, want size mismatch")
		}
	})

	t.Run("missing item", func(t *testing.T) {
		v := newVault(t)
		var buf bytes.Buffer
		err := v.Get(ctx, ItemPublicKey, &buf)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Get() error = %v, want ErrNotFound", err)
		}

		version, err := v.Version(ctx, ItemPublicKey)
		if err != nil {
			t.Fatalf("Version() error = %v", err)
		}
		if version != 0 {
			t.Errorf("Version() = %d, want 0", version)
		}
	})

	t.Run("version follows latest put", func(t *testing.T) {
		v := newVault(t)
		for _, version := range []int64{1, 7} {
			data := "snapshot"
			if err := v.Put(ctx, ItemDatabase, strings.NewReader(data), int64(len(data)), version); err != nil {
				t.Fatalf("Put() error = %v", err)
			}
		}

		version, err := v.Version(ctx, ItemDatabase)
		if err != nil {
			t.Fatalf("Version() error = %v", err)
		}
		if version != 7 {
			t.Errorf("Version() = %d, want 7", version)
		}
	})

	t.Run("items are independent", func(t *testing.T) {
		v := newVault(t)
		if err := v.Put(ctx, ItemPublicKey, strings.NewReader("pub"), 3, 2); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if err := v.Put(ctx, ItemPrivateKey, strings.NewReader("priv"), 4, 5); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		var buf bytes.Buffer
		if err := v.Get(ctx, ItemPublicKey, &buf); err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if buf.String() != "pub" {
			t.Errorf("Get(%s) = %q, want %q", ItemPublicKey, buf.String(), "pub")
		}
		if version, _ := v.Version(ctx, ItemPublicKey); version != 2 {
			t.Errorf("Version(%s) = %d, want 2", ItemPublicKey, version)
		}
	})
}
