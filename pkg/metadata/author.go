package metadata

import (
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/docfmt"
)

// extractAuthor returns the document author for pdf and docx payloads, or
// UnknownAuthor.
func extractAuthor(ext string, data []byte) string {
	var author string

	switch ext {
	case ".pdf":
		author, _ = docfmt.PDFAuthor(data)
	case ".docx":
		author, _ = docfmt.DOCXAuthor(data)
	}

	if author == "" {
		return UnknownAuthor
	}

	return author
}
