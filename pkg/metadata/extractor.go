package metadata

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"strings"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/filetree"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/textutil"
)

var errPayloadMissing = errors.New("payload slot is empty")

// Extractor produces per-file metadata records.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates an Extractor.
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Extractor{logger: logger}
}

// Extract returns one record per id, in order. Failures for a single file
// produce a minimal error record and never abort the batch.
func (e *Extractor) Extract(ctx context.Context, tree *filetree.Tree, payloads filetree.Payloads, ids []filetree.NodeID) []Record {
	out := make([]Record, 0, len(ids))

	for _, id := range ids {
		out = append(out, e.extractOne(ctx, tree.Node(id), payloads))
	}

	return out
}

func (e *Extractor) extractOne(ctx context.Context, n *filetree.Node, payloads filetree.Payloads) (rec Record) {
	defer func() {
		if r := recover(); r != nil {
			rec = errorRecord(n, fmt.Errorf("panic: %v", r))
			e.logger.WarnContext(ctx, "metadata extraction panicked", "path", n.Path, "panic", r)
		}
	}()

	full, err := buildRecord(n, payloads)
	if err != nil {
		e.logger.WarnContext(ctx, "metadata extraction failed", "path", n.Path, "error", err)

		return errorRecord(n, err)
	}

	return full
}

func errorRecord(n *filetree.Node, err error) Record {
	return Record{
		Filename:    n.Name,
		Filepath:    n.Path,
		BinaryIndex: n.BinaryIndex,
		Error:       err.Error(),
	}
}

func buildRecord(n *filetree.Node, payloads filetree.Payloads) (Record, error) {
	data, ok := payloads.Get(n.BinaryIndex)
	if !ok {
		return Record{}, fmt.Errorf("%w: index %d", errPayloadMissing, n.BinaryIndex)
	}

	rec := Record{
		Filename:         n.Name,
		Filepath:         n.Path,
		FileExtension:    n.Extension,
		FileSize:         n.Size,
		BinaryIndex:      n.BinaryIndex,
		CreationDate:     UnknownDate,
		LastModifiedDate: UnknownDate,
	}

	if n.FSBacked {
		onDisk, readErr := os.ReadFile(n.Path)
		if readErr != nil {
			return Record{}, fmt.Errorf("read %s: %w", n.Path, readErr)
		}

		rec.Checksum = checksum(onDisk)
		rec.CreationDate = formatDate(n.CreatedAt)
		rec.LastModifiedDate = formatDate(n.LastModified)
	} else {
		rec.Checksum = checksum(data)
	}

	rec.MIMEType = mimeType(n.Extension, data)
	rec.Author = extractAuthor(n.Extension, data)

	if textutil.IsBinary(data) {
		rec.Encoding = EncodingBinary

		return rec, nil
	}

	text, enc := textutil.Decode(data)
	rec.Encoding = enc
	rec.LineCount = textutil.CountLines([]byte(text))
	rec.WordCount = textutil.CountWords(text)
	rec.CharacterCount = textutil.CountChars(text)

	return rec, nil
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)

	return hex.EncodeToString(sum[:])
}

// mimeType looks the extension up first and falls back to content sniffing.
func mimeType(ext string, data []byte) string {
	if ext != "" {
		if t := mime.TypeByExtension(ext); t != "" {
			mediaType, _, _ := strings.Cut(t, ";")

			return mediaType
		}
	}

	mediaType, _, _ := strings.Cut(http.DetectContentType(data), ";")

	return mediaType
}
