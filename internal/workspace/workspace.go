// Package workspace manages the ephemeral directories that hold the input
// and output files of a single evaluation.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/Shounaks/OpenCoderRank/internal/domain/evaluation"
)

const dirPrefix = "eval-"

// Handle identifies one allocated workspace.
type Handle struct {
	dir string
}

// Dir returns the absolute workspace path on the host.
func (h *Handle) Dir() string { return h.dir }

// Manager allocates and disposes uniquely-named workspaces under a shared
// scratch root. Names are collision-resistant, so concurrent evaluations need
// no coordination.
type Manager struct {
	root string
}

// NewManager builds a Manager rooted at dir, or the OS temp directory when
// dir is empty.
func NewManager(dir string) *Manager {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Manager{root: dir}
}

// Allocate creates a fresh workspace directory.
func (m *Manager) Allocate() (*Handle, error) {
	dir := filepath.Join(m.root, dirPrefix+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &evaluation.AllocationError{Path: dir, Err: err}
	}
	return &Handle{dir: dir}, nil
}

// VerifyWritable confirms the workspace accepts file writes. Evaluation must
// abort before any sandbox is launched when this fails.
func (m *Manager) VerifyWritable(h *Handle) error {
	probe := filepath.Join(h.dir, ".writable")
	if err := os.WriteFile(probe, nil, 0o644); err != nil {
		return &evaluation.PermissionError{Path: h.dir, Err: err}
	}
	if err := os.Remove(probe); err != nil {
		return &evaluation.PermissionError{Path: h.dir, Err: err}
	}
	return nil
}

// Materialize writes the supplied files into the workspace.
func (m *Manager) Materialize(h *Handle, files map[string][]byte) error {
	for name, data := range files {
		if filepath.Base(name) != name {
			return fmt.Errorf("materialize %q: file names must not contain path separators", name)
		}
		if err := os.WriteFile(filepath.Join(h.dir, name), data, 0o644); err != nil {
			return fmt.Errorf("materialize %q: %w", name, err)
		}
	}
	return nil
}

// Dispose removes the workspace and everything in it. Disposing an already
// removed workspace is a no-op, so it is safe on every exit path.
func (m *Manager) Dispose(h *Handle) error {
	if h == nil || h.dir == "" {
		return nil
	}
	if err := os.RemoveAll(h.dir); err != nil {
		return fmt.Errorf("dispose workspace %s: %w", h.dir, err)
	}
	return nil
}
