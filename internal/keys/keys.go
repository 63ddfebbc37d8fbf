package keys

import (
	"strconv"
	"strings"
)

// ActorKey coerces a student identifier into its canonical string form.
// All queue and session maps are keyed by this form so callers that pass
// padded ids still land on the same record.
func ActorKey(id string) string {
	return strings.TrimSpace(id)
}

// CardCopyID builds the synthetic identifier for the i-th weighted copy of
// a question card so duplicates stay distinguishable in a hand.
func CardCopyID(baseID string, i int) string {
	return baseID + "_" + strconv.Itoa(i)
}
