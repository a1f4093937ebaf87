package users

import (
	"testing"

	"github.com/agahlya1812/memoboost/internal/server/memstore"
)

func TestMemoryRepository(t *testing.T) {
	runContract(t, func(t *testing.T) Repository {
		return NewMemoryRepository(memstore.New(nil, nil))
	})
}
