// Package utils contains id minting and day key helpers
package utils

import (
	"github.com/oklog/ulid/v2"
)

// GenerateULID mints a lexicographically sortable unique id combining a
// millisecond timestamp with a random component.
func GenerateULID() string {
	return ulid.Make().String()
}
