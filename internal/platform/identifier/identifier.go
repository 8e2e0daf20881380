package identifier

import (
	"strings"

	"github.com/google/uuid"
)

// New creates an entropy-backed identifier with a stable prefix.
func New(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
