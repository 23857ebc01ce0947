package chat

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// conversationSeparator never appears in a canonical UUID string, so the
// derived key cannot collide across distinct (pair, gig) combinations.
const conversationSeparator = ":"

// DeriveConversationID builds the storage key for the conversation between
// two users about one gig. It is pure and symmetric in the two users: both
// participants derive the same key regardless of who initiates, and the
// gig id keeps conversations between the same pair about different gigs
// distinct.
func DeriveConversationID(userA, userB uuid.UUID, gigID uuid.UUID) string {
	parts := []string{userA.String(), userB.String(), gigID.String()}
	sort.Strings(parts)
	return strings.Join(parts, conversationSeparator)
}
