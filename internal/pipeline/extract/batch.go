package extract

import (
	"strings"

	"github.com/google/uuid"
)

const batchIDLength = 12

// NewBatchID returns a short random identifier tagging every raw row of one
// extraction.
func NewBatchID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:batchIDLength]
}
