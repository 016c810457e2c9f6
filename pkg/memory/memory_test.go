package memory

import (
	"testing"

	nb "github.com/akeil/notebook"
	"github.com/akeil/notebook/pkg/storagetest"
)

func TestStorage(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) nb.Storage {
		return New()
	})
}
