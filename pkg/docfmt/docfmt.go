// Package docfmt reads author and body text out of PDF and DOCX payloads.
// Both readers are best effort: malformed documents yield empty results.
package docfmt

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zip"
)

// DOCX part names.
const (
	DOCXCorePath     = "docProps/core.xml"
	DOCXDocumentPath = "word/document.xml"
)

const maxPartSize = 32 << 20

// ErrPartNotFound is returned when a DOCX package lacks the requested part.
var ErrPartNotFound = errors.New("docx part not found")

// readDOCXPart returns the bytes of one part of a DOCX package.
func readDOCXPart(data []byte, name string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}

	for _, f := range zr.File {
		if f.Name != name {
			continue
		}

		rc, openErr := f.Open()
		if openErr != nil {
			return nil, fmt.Errorf("open %s: %w", name, openErr)
		}

		raw, readErr := io.ReadAll(io.LimitReader(rc, maxPartSize))
		rc.Close()

		if readErr != nil {
			return nil, fmt.Errorf("read %s: %w", name, readErr)
		}

		return raw, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrPartNotFound, name)
}

type coreProperties struct {
	Creator string `xml:"creator"`
}

// DOCXAuthor returns the dc:creator of a DOCX package.
func DOCXAuthor(data []byte) (string, error) {
	raw, err := readDOCXPart(data, DOCXCorePath)
	if err != nil {
		return "", err
	}

	var props coreProperties

	xmlErr := xml.Unmarshal(raw, &props)
	if xmlErr != nil {
		return "", fmt.Errorf("parse %s: %w", DOCXCorePath, xmlErr)
	}

	return strings.TrimSpace(props.Creator), nil
}

// DOCXText returns the run text of the main document, one line per
// paragraph.
func DOCXText(data []byte) (string, error) {
	raw, err := readDOCXPart(data, DOCXDocumentPath)
	if err != nil {
		return "", err
	}

	dec := xml.NewDecoder(bytes.NewReader(raw))

	var (
		b      strings.Builder
		inText bool
	)

	for {
		tok, tokErr := dec.Token()
		if errors.Is(tokErr, io.EOF) {
			break
		}

		if tokErr != nil {
			return b.String(), fmt.Errorf("parse %s: %w", DOCXDocumentPath, tokErr)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			inText = el.Name.Local == "t"
		case xml.EndElement:
			inText = false

			if el.Name.Local == "p" {
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(el)
			}
		}
	}

	return b.String(), nil
}
