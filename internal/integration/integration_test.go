//go:build integration
// +build integration

package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gigboard/gigboard/internal/domain/chat"
	domainGig "github.com/gigboard/gigboard/internal/domain/gig"
	domainUser "github.com/gigboard/gigboard/internal/domain/user"
	"github.com/gigboard/gigboard/internal/infrastructure/postgres"
)

func TestConversationQueries(t *testing.T) {
	pool, cleanup := newTestPool(t)
	defer cleanup()
	ctx := context.Background()

	users := postgres.NewUserRepository(pool)
	gigs := postgres.NewGigRepository(pool)
	messages := postgres.NewMessageRepository(pool)

	buyer := seedUser(t, ctx, users, "ext-buyer", "Ada", "Lovelace")
	worker := seedUser(t, ctx, users, "ext-worker", "Grace", "Hopper")

	gigA := seedGig(t, ctx, gigs, buyer.UserID, "Design a logo")
	gigB := seedGig(t, ctx, gigs, buyer.UserID, "Proofread an essay")

	convA := chat.DeriveConversationID(buyer.UserID, worker.UserID, gigA.GigID)
	convB := chat.DeriveConversationID(buyer.UserID, worker.UserID, gigB.GigID)

	base := time.Now().UTC().Truncate(time.Microsecond)
	seedMessage(t, ctx, messages, convA, gigA.GigID, buyer.UserID, worker.UserID, "about the logo", base)
	seedMessage(t, ctx, messages, convA, gigA.GigID, worker.UserID, buyer.UserID, "sketches attached", base.Add(time.Minute))
	seedMessage(t, ctx, messages, convB, gigB.GigID, buyer.UserID, worker.UserID, "about the essay", base.Add(2*time.Minute))

	t.Run("summaries split by gig and order by recency", func(t *testing.T) {
		summaries, err := messages.ListSummaries(ctx, worker.UserID)
		if err != nil {
			t.Fatalf("list summaries: %v", err)
		}
		if len(summaries) != 2 {
			t.Fatalf("expected 2 summaries, got %d", len(summaries))
		}
		if summaries[0].ConversationID != convB {
			t.Fatalf("expected most recent conversation first, got %s", summaries[0].ConversationID)
		}
		if summaries[0].GigTitle != "Proofread an essay" {
			t.Fatalf("unexpected gig title %q", summaries[0].GigTitle)
		}
		if summaries[0].LastMessage == nil || summaries[0].LastMessage.Body != "about the essay" {
			t.Fatalf("unexpected last message for %s", convB)
		}
		if summaries[1].LastMessage == nil || summaries[1].LastMessage.Body != "sketches attached" {
			t.Fatalf("unexpected last message for %s", convA)
		}
		// One inbound message per conversation is addressed to the worker.
		if summaries[1].UnreadCount != 1 {
			t.Fatalf("expected 1 unread addressed to worker in %s, got %d", convA, summaries[1].UnreadCount)
		}
		if summaries[0].UnreadCount != 1 {
			t.Fatalf("expected 1 unread addressed to worker in %s, got %d", convB, summaries[0].UnreadCount)
		}
	})

	t.Run("mark read flips only the receiver's rows", func(t *testing.T) {
		n, err := messages.MarkRead(ctx, convA, worker.UserID)
		if err != nil {
			t.Fatalf("mark read: %v", err)
		}
		if n != 1 {
			t.Fatalf("expected 1 row marked, got %d", n)
		}

		history, err := messages.ListByConversation(ctx, convA)
		if err != nil {
			t.Fatalf("history: %v", err)
		}
		for _, m := range history {
			if m.ReceiverID == worker.UserID && !m.Read {
				t.Fatalf("message %s addressed to worker still unread", m.MessageID)
			}
			if m.ReceiverID == buyer.UserID && m.Read {
				t.Fatalf("message %s addressed to buyer flipped unexpectedly", m.MessageID)
			}
		}

		summaries, err := messages.ListSummaries(ctx, worker.UserID)
		if err != nil {
			t.Fatalf("list summaries: %v", err)
		}
		for _, s := range summaries {
			if s.ConversationID == convA && s.UnreadCount != 0 {
				t.Fatalf("expected no unread left in %s, got %d", convA, s.UnreadCount)
			}
		}

		// Second call is a no-op.
		n, err = messages.MarkRead(ctx, convA, worker.UserID)
		if err != nil {
			t.Fatalf("mark read again: %v", err)
		}
		if n != 0 {
			t.Fatalf("expected idempotent mark read, got %d rows", n)
		}
	})

	t.Run("seal flags one gig's conversation only", func(t *testing.T) {
		n, err := messages.SealByGig(ctx, gigA.GigID)
		if err != nil {
			t.Fatalf("seal: %v", err)
		}
		if n != 2 {
			t.Fatalf("expected 2 rows sealed, got %d", n)
		}

		ended, err := messages.HasEnded(ctx, convA)
		if err != nil {
			t.Fatalf("has ended: %v", err)
		}
		if !ended {
			t.Fatalf("expected %s to be sealed", convA)
		}

		ended, err = messages.HasEnded(ctx, convB)
		if err != nil {
			t.Fatalf("has ended: %v", err)
		}
		if ended {
			t.Fatalf("conversation %s sealed unexpectedly", convB)
		}

		// Resealing touches nothing.
		n, err = messages.SealByGig(ctx, gigA.GigID)
		if err != nil {
			t.Fatalf("reseal: %v", err)
		}
		if n != 0 {
			t.Fatalf("expected idempotent seal, got %d rows", n)
		}
	})
}

func newTestPool(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()
	dsn := testDatabaseURL(t)

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, dsn)
	if err != nil {
		t.Fatalf("db pool: %v", err)
	}

	root := repoRoot(t)
	if err := postgres.RunMigrations(ctx, pool, filepath.Join(root, "internal", "migrations")); err != nil {
		pool.Close()
		t.Fatalf("migrations: %v", err)
	}
	if err := resetDatabase(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("reset db: %v", err)
	}

	return pool, pool.Close
}

func testDatabaseURL(t *testing.T) string {
	t.Helper()
	if dsn := os.Getenv("TEST_DATABASE_URL"); dsn != "" {
		return dsn
	}
	t.Skip("TEST_DATABASE_URL not set; skipping integration tests")
	return ""
}

func repoRoot(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}

func resetDatabase(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		TRUNCATE TABLE
			messages,
			products,
			gigs,
			users
		RESTART IDENTITY CASCADE
	`)
	return err
}

func seedUser(t *testing.T, ctx context.Context, users *postgres.UserRepository, externalID, first, last string) *domainUser.User {
	t.Helper()
	now := time.Now().UTC()
	u := &domainUser.User{
		UserID:     uuid.New(),
		ExternalID: externalID,
		Email:      externalID + "@example.com",
		FirstName:  first,
		LastName:   last,
		Roles:      []domainUser.Role{domainUser.RoleBuyer},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := users.Create(ctx, u); err != nil {
		t.Fatalf("seed user %s: %v", externalID, err)
	}
	return u
}

func seedGig(t *testing.T, ctx context.Context, gigs *postgres.GigRepository, ownerID uuid.UUID, title string) *domainGig.Gig {
	t.Helper()
	now := time.Now().UTC()
	g := &domainGig.Gig{
		GigID:        uuid.New(),
		OwnerID:      ownerID,
		Title:        title,
		Description:  "enough words to pass validation",
		Price:        5000,
		Category:     "misc",
		Status:       domainGig.StatusActive,
		MaxRevisions: domainGig.DefaultMaxRevisions,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := gigs.Create(ctx, g); err != nil {
		t.Fatalf("seed gig %s: %v", title, err)
	}
	return g
}

func seedMessage(t *testing.T, ctx context.Context, messages *postgres.MessageRepository, conversationID string, gigID, senderID, receiverID uuid.UUID, body string, at time.Time) *chat.Message {
	t.Helper()
	m := &chat.Message{
		MessageID:      uuid.New(),
		ConversationID: conversationID,
		GigID:          gigID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Body:           body,
		CreatedAt:      at,
	}
	if err := messages.Create(ctx, m); err != nil {
		t.Fatalf("seed message %q: %v", body, err)
	}
	return m
}
