// Package loader resolves a user-supplied path (file, directory or zip
// archive) into a file tree plus a payload array of file contents.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/filetree"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/observability"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/units"
)

// DefaultMaxSize bounds both single files and the whole tree.
const DefaultMaxSize = 4 * units.GiB

const zipExtension = ".zip"

// Drop reasons reported to metrics.
const (
	reasonUnreadable = "unreadable"
	reasonSymlink    = "symlink"
	reasonJunk       = "archive_junk"
)

// Input-validation errors. Any of these aborts the run before side effects.
var (
	ErrPathNotFound       = errors.New("path does not exist")
	ErrUnsupportedArchive = errors.New("unsupported archive format")
	ErrFileTooLarge       = errors.New("file exceeds size limit")
	ErrTreeTooLarge       = errors.New("total size exceeds limit")
	ErrInvalidArchive     = errors.New("invalid archive")
)

var unsupportedArchives = []string{".rar", ".r00", ".r01"}

// Result is the ingested tree and its payloads. Every attached file node's
// BinaryIndex addresses a slot in Payloads.
type Result struct {
	Tree     *filetree.Tree
	Payloads filetree.Payloads
}

// Loader ingests paths into file trees.
type Loader struct {
	maxFileSize  int64
	maxTotalSize int64
	tempDir      string
	logger       *slog.Logger
	metrics      *observability.PipelineMetrics
}

// Option configures a Loader.
type Option func(*Loader)

// WithLimits sets the per-file and aggregate size bounds in bytes.
// Non-positive values keep the defaults.
func WithLimits(maxFile, maxTotal int64) Option {
	return func(l *Loader) {
		if maxFile > 0 {
			l.maxFileSize = maxFile
		}

		if maxTotal > 0 {
			l.maxTotalSize = maxTotal
		}
	}
}

// WithTempDir sets the parent directory for archive expansion.
func WithTempDir(dir string) Option {
	return func(l *Loader) {
		l.tempDir = dir
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithMetrics records ingested and skipped files.
func WithMetrics(pm *observability.PipelineMetrics) Option {
	return func(l *Loader) {
		l.metrics = pm
	}
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{
		maxFileSize:  DefaultMaxSize,
		maxTotalSize: DefaultMaxSize,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load validates path and builds its tree. Archives are expanded into a
// temporary directory that is removed before Load returns.
func (l *Loader) Load(ctx context.Context, path string) (*Result, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}

	info, statErr := os.Stat(absPath)
	if statErr != nil {
		if errors.Is(statErr, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
		}

		return nil, fmt.Errorf("stat %s: %w", path, statErr)
	}

	if !info.IsDir() {
		checkErr := l.checkFile(absPath, info.Size())
		if checkErr != nil {
			return nil, checkErr
		}
	} else {
		sizeErr := l.checkDirSize(absPath)
		if sizeErr != nil {
			return nil, sizeErr
		}
	}

	b := &builder{loader: l, ctx: ctx}

	switch {
	case info.IsDir():
		b.tree = filetree.New(dirNode(info.Name(), absPath, info))
		b.addDir(b.tree.Root(), absPath)

		if b.err != nil {
			return nil, b.err
		}
	case filetree.ExtensionOf(absPath) == zipExtension:
		b.tree = filetree.New(filetree.Node{
			Name:        filepath.Base(filepath.Dir(absPath)),
			Path:        filepath.Dir(absPath),
			Kind:        filetree.KindDirectory,
			BinaryIndex: filetree.NoPayload,
			FSBacked:    true,
		})

		zipErr := b.addArchive(b.tree.Root(), absPath, info)
		if zipErr != nil {
			return nil, zipErr
		}
	default:
		b.tree = filetree.New(filetree.Node{
			Name:        filepath.Base(filepath.Dir(absPath)),
			Path:        filepath.Dir(absPath),
			Kind:        filetree.KindDirectory,
			BinaryIndex: filetree.NoPayload,
			FSBacked:    true,
		})

		readErr := b.addFile(b.tree.Root(), absPath, info)
		if readErr != nil {
			return nil, fmt.Errorf("read %s: %w", path, readErr)
		}
	}

	l.metrics.FilesIngested(ctx, len(b.payloads))
	l.logger.DebugContext(ctx, "loaded input", "path", absPath, "files", len(b.payloads), "bytes", b.total)

	return &Result{Tree: b.tree, Payloads: b.payloads}, nil
}

func (l *Loader) checkFile(path string, size int64) error {
	if isUnsupportedArchive(path) {
		return fmt.Errorf("%w: %s", ErrUnsupportedArchive, filepath.Base(path))
	}

	if size > l.maxFileSize {
		return fmt.Errorf("%w: %s is %s", ErrFileTooLarge, filepath.Base(path), units.FormatSize(size))
	}

	return nil
}

// checkDirSize walks the tree once, summing regular file sizes, before any
// payload is read.
func (l *Loader) checkDirSize(root string) error {
	var total int64

	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped during the build.
			return nil //nolint:nilerr // tolerated here, reported later.
		}

		if !d.Type().IsRegular() {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return nil //nolint:nilerr // same as above.
		}

		if isUnsupportedArchive(p) {
			return fmt.Errorf("%w: %s", ErrUnsupportedArchive, p)
		}

		if info.Size() > l.maxFileSize {
			return fmt.Errorf("%w: %s is %s", ErrFileTooLarge, p, units.FormatSize(info.Size()))
		}

		total += info.Size()
		if total > l.maxTotalSize {
			return fmt.Errorf("%w: more than %s", ErrTreeTooLarge, units.FormatSize(l.maxTotalSize))
		}

		return nil
	})
	if walkErr != nil {
		return walkErr
	}

	return nil
}

func isUnsupportedArchive(path string) bool {
	return slices.Contains(unsupportedArchives, filetree.ExtensionOf(path))
}

type builder struct {
	loader   *Loader
	ctx      context.Context
	tree     *filetree.Tree
	payloads filetree.Payloads
	total    int64
	err      error
}

func (b *builder) warn(msg, path string, err error, reason string) {
	b.loader.logger.WarnContext(b.ctx, msg, "path", path, "error", err)
	b.loader.metrics.FileDropped(b.ctx, reason)
}

// addDir mirrors dir's entries under parent in name order.
func (b *builder) addDir(parent filetree.NodeID, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		b.warn("skipping unreadable directory", dir, err, reasonUnreadable)

		return
	}

	for _, entry := range entries {
		if b.err != nil {
			return
		}

		full := filepath.Join(dir, entry.Name())

		if entry.Type()&fs.ModeSymlink != 0 {
			b.loader.logger.DebugContext(b.ctx, "skipping symlink", "path", full)
			b.loader.metrics.FileDropped(b.ctx, reasonSymlink)

			continue
		}

		info, infoErr := entry.Info()
		if infoErr != nil {
			b.warn("skipping unreadable entry", full, infoErr, reasonUnreadable)

			continue
		}

		switch {
		case entry.IsDir():
			id := b.tree.AddChild(parent, dirNode(entry.Name(), full, info))
			b.addDir(id, full)
		case !info.Mode().IsRegular():
			continue
		case filetree.ExtensionOf(entry.Name()) == zipExtension && !b.insideArchive(parent):
			zipErr := b.addArchive(parent, full, info)
			if isFatal(zipErr) {
				b.err = zipErr

				return
			}

			if zipErr != nil {
				b.warn("skipping unreadable archive", full, zipErr, reasonUnreadable)
			}
		default:
			readErr := b.addFile(parent, full, info)
			if isFatal(readErr) {
				b.err = readErr

				return
			}

			if readErr != nil {
				b.warn("skipping unreadable file", full, readErr, reasonUnreadable)
			}
		}
	}
}

// isFatal reports whether err aborts the whole ingest rather than skipping
// one entry.
func isFatal(err error) bool {
	return errors.Is(err, ErrFileTooLarge) || errors.Is(err, ErrTreeTooLarge) || errors.Is(err, ErrInvalidArchive)
}

// reserve accounts size against the aggregate bound.
func (b *builder) reserve(name string, size int64) error {
	if b.total+size > b.loader.maxTotalSize {
		return fmt.Errorf("%w: %s passes %s", ErrTreeTooLarge, name, units.FormatSize(b.loader.maxTotalSize))
	}

	b.total += size

	return nil
}

func (b *builder) insideArchive(id filetree.NodeID) bool {
	if b.tree.Node(id).Kind == filetree.KindArchive {
		return true
	}

	return b.tree.HasAncestor(id, func(n *filetree.Node) bool { return n.Kind == filetree.KindArchive })
}

func (b *builder) addFile(parent filetree.NodeID, path string, info fs.FileInfo) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	reserveErr := b.reserve(info.Name(), int64(len(data)))
	if reserveErr != nil {
		return reserveErr
	}

	created, modified := fileTimes(info)

	b.tree.AddChild(parent, filetree.Node{
		Name:         info.Name(),
		Path:         path,
		Extension:    filetree.ExtensionOf(info.Name()),
		Kind:         filetree.KindFile,
		Size:         int64(len(data)),
		BinaryIndex:  b.payloads.Append(data),
		CreatedAt:    created,
		LastModified: modified,
		FSBacked:     true,
	})

	return nil
}

func dirNode(name, path string, info fs.FileInfo) filetree.Node {
	created, modified := fileTimes(info)

	return filetree.Node{
		Name:         name,
		Path:         path,
		Kind:         filetree.KindDirectory,
		BinaryIndex:  filetree.NoPayload,
		CreatedAt:    created,
		LastModified: modified,
		FSBacked:     true,
	}
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
