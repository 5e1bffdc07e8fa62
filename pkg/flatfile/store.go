// Package flatfile is a small append-only text record store. Records are either single
// pipe-delimited lines or marker-bounded blocks; lookups are linear scans.
//
// The store never returns I/O errors to callers: failures are logged and reported as
// "not found" or "not saved".
package flatfile

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// CommentPrefix marks header and comment lines skipped on read.
const CommentPrefix = "#"

// Delimiter separates fields of a line record.
const Delimiter = "|"

// File describes one record file and the header written when it is first created.
type File struct {
	Name   string
	Header []string
}

// Store resolves record files under a base directory.
type Store struct {
	baseDir string
	logger  *zap.Logger
	mu      sync.Mutex
}

// NewStore ensures the base directory exists and returns a store rooted there.
func NewStore(baseDir string, logger *zap.Logger) (*Store, error) {
	if baseDir == "" {
		baseDir = "."
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Store{baseDir: baseDir, logger: logger}, nil
}

// Path returns the absolute or base-relative location of a record file.
func (s *Store) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.baseDir, name)
}

// AppendBlock writes exactly one record at the end of the file, creating it with its
// header first if needed. The block is terminated with a newline when missing.
func (s *Store) AppendBlock(file File, block string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(file.Name)
	if err := s.ensureHeader(path, file.Header); err != nil {
		s.logger.Error("flatfile header write failed", zap.String("file", file.Name), zap.Error(err))
		return false
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		s.logger.Error("flatfile open for append failed", zap.String("file", file.Name), zap.Error(err))
		return false
	}
	defer f.Close() //nolint:errcheck

	if !strings.HasSuffix(block, "\n") {
		block += "\n"
	}
	if _, err := f.WriteString(block); err != nil {
		s.logger.Error("flatfile append failed", zap.String("file", file.Name), zap.Error(err))
		return false
	}
	return true
}

func (s *Store) ensureHeader(path string, header []string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	var b strings.Builder
	for _, line := range header {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if len(header) > 0 {
		b.WriteString("\n")
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// FindLine returns the first non-comment, non-blank line (trimmed) accepted by match.
func (s *Store) FindLine(name string, match func(line string) bool) (string, bool) {
	var found string
	ok := s.scan(name, func(line string) bool {
		if match(line) {
			found = line
			return false
		}
		return true
	})
	if !ok || found == "" {
		return "", false
	}
	return found, true
}

// Lines returns every non-comment, non-blank line (trimmed) in file order.
func (s *Store) Lines(name string) []string {
	var lines []string
	s.scan(name, func(line string) bool {
		lines = append(lines, line)
		return true
	})
	return lines
}

// FindBlock returns the text from the first line that is exactly start through the next line
// that is exactly end, both included. Markers embedded in other lines do not open a block.
func (s *Store) FindBlock(name, start, end string) (string, bool) {
	content, ok := s.read(name)
	if !ok {
		return "", false
	}
	var block []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if block == nil {
			if trimmed == start {
				block = []string{trimmed}
			}
			continue
		}
		block = append(block, strings.TrimRight(line, "\r"))
		if trimmed == end {
			return strings.Join(block, "\n"), true
		}
	}
	return "", false
}

// Blocks splits the file on the end marker and returns each non-empty chunk trimmed,
// without the marker. Comment lines leading a chunk are dropped; later ones are content.
func (s *Store) Blocks(name, end string) []string {
	content, ok := s.read(name)
	if !ok {
		return nil
	}
	parts := strings.Split(content, end)
	blocks := make([]string, 0, len(parts))
	for _, part := range parts {
		lines := strings.Split(part, "\n")
		first := 0
		for first < len(lines) {
			trimmed := strings.TrimSpace(lines[first])
			if trimmed != "" && !strings.HasPrefix(trimmed, CommentPrefix) {
				break
			}
			first++
		}
		block := strings.TrimSpace(strings.Join(lines[first:], "\n"))
		if block != "" {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

// Exists reports whether the record file is present.
func (s *Store) Exists(name string) bool {
	_, err := os.Stat(s.Path(name))
	return err == nil
}

func (s *Store) read(name string) (string, bool) {
	raw, err := os.ReadFile(s.Path(name))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Error("flatfile read failed", zap.String("file", name), zap.Error(err))
		}
		return "", false
	}
	return string(raw), true
}

// scan feeds record lines to fn until it returns false. The bool result is false when the
// file could not be read.
func (s *Store) scan(name string, fn func(line string) bool) bool {
	f, err := os.Open(s.Path(name))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Error("flatfile open failed", zap.String("file", name), zap.Error(err))
		}
		return false
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, CommentPrefix) {
			continue
		}
		if !fn(line) {
			return true
		}
	}
	if err := scanner.Err(); err != nil {
		s.logger.Error("flatfile scan failed", zap.String("file", name), zap.Error(err))
		return false
	}
	return true
}

// SplitFields splits a line record into its pipe-delimited fields.
func SplitFields(line string) []string {
	return strings.Split(line, Delimiter)
}

// JoinFields builds a line record from fields.
func JoinFields(fields ...string) string {
	return strings.Join(fields, Delimiter)
}
