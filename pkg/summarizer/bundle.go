package summarizer

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed bundle-schema.json
var bundleSchema []byte

// ErrInvalidBundle is returned when a bundle does not match the bundle schema.
var ErrInvalidBundle = errors.New("invalid summary bundle")

var bundleSchemaLoader = gojsonschema.NewBytesLoader(bundleSchema)

// EncodeBundle marshals bundle to JSON and validates it against the
// embedded bundle schema.
func EncodeBundle(bundle any) ([]byte, error) {
	raw, err := json.Marshal(bundle)
	if err != nil {
		return nil, fmt.Errorf("marshal bundle: %w", err)
	}

	result, err := gojsonschema.Validate(bundleSchemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("validate bundle: %w", err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, re := range result.Errors() {
			msgs = append(msgs, re.String())
		}

		return nil, fmt.Errorf("%w: %s", ErrInvalidBundle, strings.Join(msgs, "; "))
	}

	return raw, nil
}
