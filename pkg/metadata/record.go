// Package metadata derives per-file descriptive metadata from a classified
// file tree and aggregates it into extension, skill and date rollups.
package metadata

import "time"

// Sentinels for values that cannot be determined.
const (
	UnknownDate   = "unknown_date"
	UnknownAuthor = "unknown_author"
)

// EncodingBinary marks files whose contents were not decoded as text.
const EncodingBinary = "binary"

// DateLayout is the layout of CreationDate and LastModifiedDate.
const DateLayout = time.RFC3339

// Record is the metadata of one file. When extraction fails only the
// identifying fields and Error are set.
type Record struct {
	Filename         string `json:"filename"`
	Filepath         string `json:"filepath"`
	FileExtension    string `json:"file_extension,omitempty"`
	FileSize         int64  `json:"file_size"`
	BinaryIndex      int    `json:"binary_index"`
	CreationDate     string `json:"creation_date,omitempty"`
	LastModifiedDate string `json:"last_modified_date,omitempty"`
	Checksum         string `json:"checksum,omitempty"`
	MIMEType         string `json:"mime_type,omitempty"`
	Author           string `json:"author,omitempty"`
	LineCount        int    `json:"line_count"`
	WordCount        int    `json:"word_count"`
	CharacterCount   int    `json:"character_count"`
	Encoding         string `json:"encoding,omitempty"`
	Error            string `json:"error,omitempty"`
}

// Failed reports whether the record is a minimal error record.
func (r *Record) Failed() bool {
	return r.Error != ""
}

// Modified parses LastModifiedDate; ok is false for unknown dates.
func (r *Record) Modified() (time.Time, bool) {
	return parseDate(r.LastModifiedDate)
}

// Created parses CreationDate; ok is false for unknown dates.
func (r *Record) Created() (time.Time, bool) {
	return parseDate(r.CreationDate)
}

func parseDate(s string) (time.Time, bool) {
	if s == "" || s == UnknownDate {
		return time.Time{}, false
	}

	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return UnknownDate
	}

	return t.Format(DateLayout)
}
