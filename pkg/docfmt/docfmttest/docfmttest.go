// Package docfmttest builds small, well-formed PDF documents for tests.
package docfmttest

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/require"
)

// PDF describes a document for BuildPDF.
type PDF struct {
	// Author is written verbatim as the /Author string object, so both
	// literal "(...)" and hex "<FEFF...>" forms can be exercised. Empty
	// omits the information dictionary.
	Author string
	// Pages holds the text shown on each page.
	Pages []string
	// Compress stores content streams with /FlateDecode.
	Compress bool
}

var literalEscaper = strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`)

// BuildPDF renders doc with a correct cross-reference table.
func BuildPDF(t testing.TB, doc PDF) []byte {
	t.Helper()

	var objects []string

	add := func(body string) int {
		objects = append(objects, body)

		return len(objects)
	}

	catalog := add("")
	pages := add("")
	font := add("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	kids := make([]string, 0, len(doc.Pages))

	for _, text := range doc.Pages {
		content := add(stream(t, fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", literalEscaper.Replace(text)), doc.Compress))
		page := add(fmt.Sprintf(
			"<< /Type /Page /Parent %d 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>",
			pages, font, content))
		kids = append(kids, fmt.Sprintf("%d 0 R", page))
	}

	objects[catalog-1] = fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pages)
	objects[pages-1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(kids))

	info := 0
	if doc.Author != "" {
		info = add(fmt.Sprintf("<< /Author %s >>", doc.Author))
	}

	var buf bytes.Buffer

	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := buf.Len()

	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)

	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}

	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R", len(objects)+1, catalog)

	if info != 0 {
		fmt.Fprintf(&buf, " /Info %d 0 R", info)
	}

	fmt.Fprintf(&buf, " >>\nstartxref\n%d\n%%%%EOF\n", xref)

	return buf.Bytes()
}

func stream(t testing.TB, content string, compress bool) string {
	t.Helper()

	if !compress {
		return fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content)
	}

	var z bytes.Buffer

	zw := zlib.NewWriter(&z)
	_, err := zw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	return fmt.Sprintf("<< /Length %d /Filter /FlateDecode >>\nstream\n%s\nendstream", z.Len(), z.String())
}
