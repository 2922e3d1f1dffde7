package memory

import (
	"testing"

	"github.com/hongminglow/userdir/internal/storage"
	"github.com/hongminglow/userdir/internal/storage/storagetest"
)

func TestStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.UserStore { return New() })
}
