package chat

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDeriveConversationID_Symmetric(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	gigID := uuid.New()

	assert.Equal(t, DeriveConversationID(a, b, gigID), DeriveConversationID(b, a, gigID))
}

func TestDeriveConversationID_DistinctPerGig(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	gig1 := uuid.New()
	gig2 := uuid.New()

	assert.NotEqual(t, DeriveConversationID(a, b, gig1), DeriveConversationID(a, b, gig2))
}

func TestDeriveConversationID_Deterministic(t *testing.T) {
	a := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	b := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	gigID := uuid.MustParse("00000000-0000-0000-0000-000000000001")

	id := DeriveConversationID(a, b, gigID)
	assert.Equal(t, id, DeriveConversationID(a, b, gigID))

	parts := strings.Split(id, conversationSeparator)
	assert.Len(t, parts, 3)
	assert.Equal(t, gigID.String(), parts[0])
	assert.Equal(t, a.String(), parts[1])
	assert.Equal(t, b.String(), parts[2])
}
