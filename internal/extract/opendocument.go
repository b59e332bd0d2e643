package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

// OpenDocument packages (ODT, ODP, ODS) keep their body in content.xml.
const odfContentPath = "content.xml"

// Separate patterns per element so opening and closing tags stay paired.
var (
	odfTextP    = regexp.MustCompile(`<text:p[^>]*>([^<]*)</text:p>`)
	odfTextSpan = regexp.MustCompile(`<text:span[^>]*>([^<]*)</text:span>`)
	odfTextH    = regexp.MustCompile(`<text:h[^>]*>([^<]*)</text:h>`)
)

// extractOpenDocument extracts text from an OpenDocument zip package.
// Headings only occur in text and presentation documents; spreadsheet cells
// carry text:p and text:span elements only, so withHeadings is false for ODS.
func extractOpenDocument(content []byte, withHeadings bool) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract OpenDocument: not a zip: %w", err)
	}
	var contentXML []byte
	for _, f := range zr.File {
		if f.Name != odfContentPath {
			continue
		}
		contentXML, err = readZipFile(f)
		if err != nil {
			return "", fmt.Errorf("extract OpenDocument: %s: %w", f.Name, err)
		}
		break
	}
	if contentXML == nil {
		return "", fmt.Errorf("extract OpenDocument: %s not found", odfContentPath)
	}

	s := string(contentXML)
	patterns := []*regexp.Regexp{odfTextP, odfTextSpan}
	if withHeadings {
		patterns = append(patterns, odfTextH)
	}
	var b strings.Builder
	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatch(s, -1) {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strings.TrimSpace(m[1]))
		}
	}
	return strings.TrimSpace(b.String()), nil
}
