package slogutil

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"sebot/internal/config"
)

// openLogFile opens the logging.file destination: size-rotated when
// logging.maxSize parses, a plain append-only file otherwise.
func openLogFile(l config.LoggingConfig) (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(l.File), 0755); err != nil {
		return nil, err
	}
	if size := ParseSize(l.MaxSize); size > 0 {
		return OpenRotatingFile(l.File, size, l.MaxBackups)
	}
	return os.OpenFile(l.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}

// RotatingFile is an append-only log file that rolls over once a write
// would push it past maxSize bytes. Rolled files are kept as path.1 (newest)
// through path.N; with no backups the file is truncated in place.
type RotatingFile struct {
	path    string
	maxSize int64
	keep    int

	mu   sync.Mutex
	file *os.File
	size int64
}

// OpenRotatingFile opens path for appending. maxSize must be positive.
func OpenRotatingFile(path string, maxSize int64, keep int) (*RotatingFile, error) {
	if maxSize <= 0 {
		return nil, errors.New("rotating log file needs a positive size limit")
	}
	if keep < 0 {
		keep = 0
	}
	f, size, err := appendTo(path)
	if err != nil {
		return nil, err
	}
	return &RotatingFile{path: path, maxSize: maxSize, keep: keep, file: f, size: size}, nil
}

func appendTo(path string) (*os.File, int64, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

func (r *RotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return 0, os.ErrClosed
	}
	if r.size > 0 && r.size+int64(len(p)) > r.maxSize {
		// On failure the record still lands in the current file.
		_ = r.roll()
	}
	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

func (r *RotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

func (r *RotatingFile) roll() error {
	if r.keep == 0 {
		if err := r.file.Truncate(0); err != nil {
			return err
		}
		r.size = 0
		return nil
	}

	if err := r.file.Close(); err != nil {
		return err
	}
	// path.keep falls off the end when path.keep-1 is renamed over it.
	for i := r.keep - 1; i >= 1; i-- {
		_ = os.Rename(r.numbered(i), r.numbered(i+1))
	}
	renameErr := os.Rename(r.path, r.numbered(1))

	f, size, err := appendTo(r.path)
	if err != nil {
		return err
	}
	r.file, r.size = f, size
	return renameErr
}

func (r *RotatingFile) numbered(n int) string {
	return r.path + "." + strconv.Itoa(n)
}

var sizeUnits = []struct {
	suffix string
	bytes  float64
}{
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"B", 1},
}

// ParseSize parses sizes such as "500KB", "10MB" or "1.5GB" (any case) into
// bytes. A bare number is bytes. Empty or malformed input yields 0.
func ParseSize(s string) int64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	multiplier := 1.0
	for _, u := range sizeUnits {
		if strings.HasSuffix(s, u.suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, u.suffix))
			multiplier = u.bytes
			break
		}
	}
	if s == "" || strings.Trim(s, "0123456789.") != "" {
		return 0
	}
	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(value * multiplier)
}

