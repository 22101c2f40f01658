// Package csvimport turns raw bank CSV exports into canonical transaction
// records. It detects file framing (encoding, delimiter), maps bank-specific
// headers onto the canonical schema and yields records lazily.
//
// Two modes exist: best-effort auto detection, where unparseable rows are
// dropped and counted, and strict mapped mode driven by an ImportConfig,
// where the first bad row aborts the file with its row number.
package csvimport

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Settings holds the detected framing of a CSV file.
type Settings struct {
	Encoding  string
	Delimiter rune
	Headers   []string
}

// detectionSampleSize bounds how much of the file is inspected.
const detectionSampleSize = 4096

// encodingPriority is tried in order; the first that decodes the sample wins.
var encodingPriority = []string{"utf-8", "latin-1", "cp1252", "iso-8859-1"}

// delimiterPriority is the candidate set; ties keep the earlier candidate.
var delimiterPriority = []rune{';', ',', '\t', '|'}

// DetectSettings inspects raw file bytes and returns best-effort framing:
// the first encoding that decodes the sample, the delimiter with the highest
// occurrence count in the sample, and the header names of the first line.
func DetectSettings(data []byte) (Settings, error) {
	sample := data
	if len(sample) > detectionSampleSize {
		sample = sample[:detectionSampleSize]
	}

	var decoded string
	var detectedEncoding string
	for _, name := range encodingPriority {
		text, err := decodeBytes(sample, name)
		if err != nil {
			continue
		}
		decoded = text
		detectedEncoding = name
		break
	}
	if detectedEncoding == "" {
		return Settings{}, fmt.Errorf("could not decode file with any known encoding")
	}

	delimiter := delimiterPriority[0]
	best := 0
	for _, candidate := range delimiterPriority {
		if n := strings.Count(decoded, string(candidate)); n > best {
			best = n
			delimiter = candidate
		}
	}

	var headers []string
	if line, _, found := strings.Cut(decoded, "\n"); found || line != "" {
		for _, h := range strings.Split(strings.TrimRight(line, "\r"), string(delimiter)) {
			headers = append(headers, strings.Trim(strings.TrimSpace(h), `"`))
		}
	}

	return Settings{Encoding: detectedEncoding, Delimiter: delimiter, Headers: headers}, nil
}

// decoderFor maps a configured encoding name to its decoder. UTF-8 needs no
// transformation and returns nil.
func decoderFor(name string) (*encoding.Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "latin-1", "latin1", "iso-8859-1", "iso8859-1":
		return charmap.ISO8859_1.NewDecoder(), nil
	case "cp1252", "windows-1252":
		return charmap.Windows1252.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("unsupported encoding: %s", name)
	}
}

func decodeBytes(data []byte, encodingName string) (string, error) {
	decoder, err := decoderFor(encodingName)
	if err != nil {
		return "", err
	}
	if decoder == nil {
		if !utf8.Valid(data) {
			return "", fmt.Errorf("invalid utf-8")
		}
		return strings.TrimPrefix(string(data), "\uFEFF"), nil
	}
	decoded, err := decoder.Bytes(data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// stripBOM removes a UTF-8 byte order mark from the first header cell.
// Excel and several bank exports prefix their files with one, which would
// otherwise break exact-name column lookups.
func stripBOM(headers []string) []string {
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\uFEFF")
	}
	return headers
}
