package booking

import (
	"strings"

	"github.com/google/uuid"
)

// NewReference produces a short, human-shareable confirmation code such as
// "VC-7K3F9A2B". Uniqueness is enforced by the store's index on the field.
func NewReference() string {
	raw := strings.ToUpper(uuid.NewString())
	raw = strings.ReplaceAll(raw, "-", "")
	return "VC-" + raw[:8]
}
