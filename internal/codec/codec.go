package codec

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/hargabyte/erd/internal/codec/legacy"
	"github.com/hargabyte/erd/internal/codec/standard"
	"github.com/hargabyte/erd/internal/model"
)

// Format identifies a supported XML dialect.
type Format string

// Supported formats.
const (
	// FormatStandard is the native dialect, root <ERDiagram>.
	FormatStandard Format = "standard"
	// FormatLegacy is the desktop-application dialect, root <ERDatabaseModel>.
	FormatLegacy Format = "legacy"
)

// Root element names for the two dialects.
const (
	rootStandard = "ERDiagram"
	rootLegacy   = "ERDatabaseModel"
)

// Detect reads just enough of the document to find the root element name and
// returns the dialect it belongs to. Unrecognized roots default to the
// standard dialect for backward compatibility with pre-format-tagging
// documents; only a document with no root element at all is an error.
func Detect(text string) (Format, error) {
	root, err := rootElement(text)
	if err != nil {
		return "", Malformed(err)
	}
	if root == rootLegacy {
		return FormatLegacy, nil
	}
	return FormatStandard, nil
}

// Options carries the configured fallback sizes for both dialects: the
// standard decoder uses them when a document omits a shape's size, the legacy
// decoder for its assumed entity/relationship dimensions.
type Options struct {
	Standard standard.Options
	Legacy   legacy.Options
}

// DefaultOptions returns the documented default sizes for both dialects.
func DefaultOptions() Options {
	return Options{
		Standard: standard.DefaultOptions(),
		Legacy:   legacy.DefaultOptions(),
	}
}

// Parse converts an XML document in either dialect to a canonical diagram.
// This is the only place format sniffing lives. Dangling references inside
// the document are kept, never fatal.
func Parse(text string) (*model.Diagram, error) {
	return ParseWithOptions(text, DefaultOptions())
}

// ParseWithOptions is Parse with configured fallback sizes.
func ParseWithOptions(text string, opts Options) (*model.Diagram, error) {
	format, err := Detect(text)
	if err != nil {
		return nil, err
	}
	var d *model.Diagram
	switch format {
	case FormatLegacy:
		d, err = legacy.DecodeWithOptions(text, opts.Legacy)
	default:
		// Permissive: unrecognized roots decode as standard and simply
		// yield an empty diagram when no known elements are present.
		d, err = standard.DecodeAnyWithOptions(text, opts.Standard)
	}
	if err != nil {
		return nil, Malformed(err)
	}
	return d, nil
}

// Encode serializes a diagram in the requested dialect.
func Encode(d *model.Diagram, format Format) (string, error) {
	switch format {
	case FormatLegacy:
		return legacy.Encode(d)
	case FormatStandard:
		return standard.Encode(d)
	default:
		return "", errors.New("unknown format: " + string(format))
	}
}

// rootElement scans tokens until the first start element and returns its
// local name.
func rootElement(text string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(text))
	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				return "", errors.New("document has no root element")
			}
			return "", err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start.Name.Local, nil
		}
	}
}
