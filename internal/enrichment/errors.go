// Package enrichment provides the external team, injury and weather
// sources merged into feature rows.
package enrichment

import (
	"fmt"
	"strings"
)

// SchemaError reports a CSV input missing required columns
type SchemaError struct {
	Source  string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s missing columns: %s", e.Source, strings.Join(e.Missing, ", "))
}
