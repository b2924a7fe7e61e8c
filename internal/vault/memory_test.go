package vault

import (
	"context"
	"strings"
	"sync"
	"testing"
)

func TestMemoryVault(t *testing.T) {
	testVaultContract(t, func(t *testing.T) Vault {
		return NewMemoryVault("test-vault")
	})
}

func TestMemoryVault_ConcurrentPut(t *testing.T) {
	v := NewMemoryVault("test-vault")
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func(version int64) {
			defer wg.Done()
			data := "snapshot"
			if err := v.Put(ctx, ItemDatabase, strings.NewReader(data), int64(len(data)), version); err != nil {
				t.Errorf("Put() error = %v", err)
			}
		}(int64(i + 1))
	}
	wg.Wait()

	version, err := v.Version(ctx, ItemDatabase)
	if err != nil {
		t.Fatalf("Version() error = %v", err)
	}
	if version < 1 || version > 10 {
		t.Errorf("Version() = %d, want 1..10", version)
	}
}
