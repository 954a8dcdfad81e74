package registry_test

import (
	"testing"

	"github.com/malbeclabs/whirlpools/internal/registry"
	"github.com/malbeclabs/whirlpools/internal/registry/registrytest"
)

func TestRegistry_MemoryStore(t *testing.T) {
	t.Parallel()

	registrytest.RunStoreTests(t, func(t *testing.T) registry.Store {
		return registry.NewMemoryStore()
	})
}
