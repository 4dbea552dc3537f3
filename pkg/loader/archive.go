package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/filetree"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/safeconv"
)

const (
	macOSXDir   = "__MACOSX"
	dsStoreName = ".DS_Store"
	tempPattern = "artifactminer-zip-*"
	dirPerm     = 0o755
	filePerm    = 0o600
)

var errUnsafeEntry = errors.New("entry escapes archive root")

// addArchive expands the zip at zipPath into a temporary directory, mirrors
// it under a new archive node below parent and removes the directory.
func (b *builder) addArchive(parent filetree.NodeID, zipPath string, info fs.FileInfo) error {
	rc, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidArchive, filepath.Base(zipPath), err)
	}
	defer rc.Close()

	checkErr := b.checkEntries(rc.File)
	if checkErr != nil {
		return checkErr
	}

	tmp, err := os.MkdirTemp(b.loader.tempDir, tempPattern)
	if err != nil {
		return fmt.Errorf("create extraction dir: %w", err)
	}

	defer func() {
		rmErr := os.RemoveAll(tmp)
		if rmErr != nil {
			b.loader.logger.WarnContext(b.ctx, "failed to remove extraction dir", "path", tmp, "error", rmErr)
		}
	}()

	for _, f := range rc.File {
		if isJunk(f.Name) {
			b.loader.metrics.FileDropped(b.ctx, reasonJunk)

			continue
		}

		extractErr := b.extract(f, tmp)
		if extractErr != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidArchive, f.Name, extractErr)
		}
	}

	created, modified := fileTimes(info)
	archiveID := b.tree.AddChild(parent, filetree.Node{
		Name:         info.Name(),
		Path:         zipPath,
		Extension:    zipExtension,
		Kind:         filetree.KindArchive,
		Size:         info.Size(),
		BinaryIndex:  filetree.NoPayload,
		CreatedAt:    created,
		LastModified: modified,
		FSBacked:     true,
	})

	return b.mirror(archiveID, tmp, "", filepath.ToSlash(zipPath), stem(info.Name()))
}

// checkEntries rejects unsafe names and enforces the size bounds on the
// declared uncompressed sizes before anything is written.
func (b *builder) checkEntries(files []*zip.File) error {
	total := b.total

	for _, f := range files {
		if _, err := entryPath(f.Name); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidArchive, f.Name, err)
		}

		if f.FileInfo().IsDir() || isJunk(f.Name) {
			continue
		}

		size, err := sizeOf(f)
		if err != nil {
			return err
		}

		if size > b.loader.maxFileSize {
			return fmt.Errorf("%w: %s", ErrFileTooLarge, f.Name)
		}

		total += size
		if total > b.loader.maxTotalSize {
			return fmt.Errorf("%w: archive expands past the limit", ErrTreeTooLarge)
		}
	}

	return nil
}

func sizeOf(f *zip.File) (int64, error) {
	size, err := safeconv.Uint64ToInt64(f.UncompressedSize64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrFileTooLarge, f.Name)
	}

	return size, nil
}

// entryPath returns the slash-cleaned relative path of a zip entry.
func entryPath(name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	if strings.HasPrefix(name, "/") {
		return "", errUnsafeEntry
	}

	cleaned := path.Clean(name)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", errUnsafeEntry
	}

	return cleaned, nil
}

func isJunk(name string) bool {
	rel, err := entryPath(name)
	if err != nil {
		return false
	}

	first, _, _ := strings.Cut(rel, "/")

	return first == macOSXDir || path.Base(rel) == dsStoreName
}

func (b *builder) extract(f *zip.File, root string) error {
	rel, err := entryPath(f.Name)
	if err != nil {
		return err
	}

	if rel == "." {
		return nil
	}

	dst := filepath.Join(root, filepath.FromSlash(rel))

	if f.FileInfo().IsDir() {
		return os.MkdirAll(dst, dirPerm)
	}

	mkErr := os.MkdirAll(filepath.Dir(dst), dirPerm)
	if mkErr != nil {
		return mkErr
	}

	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return err
	}

	n, copyErr := io.Copy(out, io.LimitReader(src, b.loader.maxFileSize+1))
	closeErr := out.Close()

	if copyErr != nil {
		return copyErr
	}

	if n > b.loader.maxFileSize {
		return fmt.Errorf("%w: %s", ErrFileTooLarge, f.Name)
	}

	return closeErr
}

// mirror copies the extracted tree at dir into nodes under parent. A
// top-level directory named like the archive itself is merged into the
// archive node rather than nested under it.
func (b *builder) mirror(parent filetree.NodeID, dir, rel, prefix, archiveStem string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read extracted dir: %w", err)
	}

	for _, entry := range entries {
		childRel := path.Join(rel, entry.Name())
		full := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			target := parent
			if rel != "" || entry.Name() != archiveStem {
				target = b.tree.AddChild(parent, filetree.Node{
					Name:        entry.Name(),
					Path:        prefix + "/" + childRel,
					Kind:        filetree.KindDirectory,
					BinaryIndex: filetree.NoPayload,
				})
			}

			mirrorErr := b.mirror(target, full, childRel, prefix, archiveStem)
			if mirrorErr != nil {
				return mirrorErr
			}

			continue
		}

		data, readErr := os.ReadFile(full)
		if readErr != nil {
			return fmt.Errorf("read extracted %s: %w", childRel, readErr)
		}

		reserveErr := b.reserve(childRel, int64(len(data)))
		if reserveErr != nil {
			return reserveErr
		}

		b.tree.AddChild(parent, filetree.Node{
			Name:        entry.Name(),
			Path:        prefix + "/" + childRel,
			Extension:   filetree.ExtensionOf(entry.Name()),
			Kind:        filetree.KindFile,
			Size:        int64(len(data)),
			BinaryIndex: b.payloads.Append(data),
		})
	}

	return nil
}
