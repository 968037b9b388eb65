package memstore

import (
	"testing"

	"github.com/idilsaglam/shoplist/internal/store"
	"github.com/idilsaglam/shoplist/internal/store/storetest"
)

func TestMemStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storetest.Opener {
		s := New()
		return func() (store.Gateway, error) { return s, nil }
	})
}
