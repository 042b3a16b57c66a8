package memory_test

import (
	"github.com/stridelands/engine/internal/storage"
	"github.com/stridelands/engine/internal/storage/memory"
)

// The storage package imports this one from its factory, so the interface
// assertions live in an external test package.
var (
	_ storage.Backend    = (*memory.Backend)(nil)
	_ storage.Exportable = (*memory.Backend)(nil)
)
