package fsutil

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// Staging hands out transient paths for uploaded files under a single root.
// Every path carries a snowflake ID so concurrent uploads of the same filename
// never share a path.
type Staging struct {
	root string
	fs   FileStore
	node *snowflake.Node
}

func NewStaging(root string, fs FileStore) (*Staging, error) {
	if root == "" {
		return nil, fmt.Errorf("staging root is required")
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %w", err)
	}
	return &Staging{
		root: root,
		fs:   fs,
		node: node,
	}, nil
}

// Root returns the staging directory.
func (s *Staging) Root() string {
	return s.root
}

// Path returns a fresh staging path for filename. Directory components in
// filename are discarded.
func (s *Staging) Path(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == ".." {
		base = "upload"
	}
	return filepath.Join(s.root, fmt.Sprintf("%s-%s", s.node.Generate().String(), base))
}

// Put writes data to a fresh staging path and returns it.
func (s *Staging) Put(filename string, data []byte) (string, error) {
	path := s.Path(filename)
	if err := s.fs.WriteFile(path, data); err != nil {
		return "", fmt.Errorf("failed to write staging file: %w", err)
	}
	return path, nil
}

// Release removes a staged file.
func (s *Staging) Release(path string) error {
	if err := s.fs.Remove(path); err != nil {
		return fmt.Errorf("failed to remove staging file: %w", err)
	}
	return nil
}
