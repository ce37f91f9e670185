package article

import (
	"fmt"
	"strings"
)

// Required field names reported by ExtractionError.
const (
	FieldTitle    = "title"
	FieldDate     = "date"
	FieldProvider = "provider"
)

// ExtractionError reports a page that lacks mandatory fields after every
// fallback source was consulted.
type ExtractionError struct {
	URL     string
	Missing []string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: missing required fields: %s", e.URL, strings.Join(e.Missing, ", "))
}
