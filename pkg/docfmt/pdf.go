package docfmt

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

const maxTextSize = 64 << 20

// ErrMalformedPDF is returned when a payload cannot be read as a PDF.
var ErrMalformedPDF = errors.New("malformed pdf")

// PDFAuthor returns the /Author entry of the document information
// dictionary, decoded from PDFDocEncoding or UTF-16 to UTF-8.
func PDFAuthor(data []byte) (author string, err error) {
	defer recoverMalformed(&err)

	r, err := openPDF(data)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(r.Trailer().Key("Info").Key("Author").Text()), nil
}

// PDFText returns the text shown on every page, in page order.
func PDFText(data []byte) (text string, err error) {
	defer recoverMalformed(&err)

	r, err := openPDF(data)
	if err != nil {
		return "", err
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedPDF, err)
	}

	raw, err := io.ReadAll(io.LimitReader(plain, maxTextSize))
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	return string(raw), nil
}

func openPDF(data []byte) (*pdf.Reader, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPDF, err)
	}

	return r, nil
}

// recoverMalformed turns reader panics on damaged input into ErrMalformedPDF.
func recoverMalformed(err *error) {
	if p := recover(); p != nil {
		*err = fmt.Errorf("%w: %v", ErrMalformedPDF, p)
	}
}
