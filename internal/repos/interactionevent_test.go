package repos

import (
	"context"
	"testing"

	"gorm.io/datatypes"

	"github.com/socratia/socratia-backend/internal/repos/testutil"
	"github.com/socratia/socratia-backend/internal/types"
)

func TestInteractionEventRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewInteractionEventRepo(db, testutil.Logger(t))
	ctx := context.Background()

	events := []*types.InteractionEvent{
		{UserID: "u1", NodeID: "n1", NodeType: "question", Data: datatypes.JSON([]byte(`{"clarity":0.3}`))},
		{UserID: "u1", NodeID: "n2", NodeType: "hypothesis", Data: datatypes.JSON([]byte(`{}`))},
		{UserID: "u2", NodeID: "n3", NodeType: "evidence", Data: datatypes.JSON([]byte(`{}`))},
	}
	for _, ev := range events {
		if err := repo.Create(ctx, tx, ev); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if ev.ID.String() == "00000000-0000-0000-0000-000000000000" {
			t.Fatalf("Create: id not filled")
		}
		if ev.CreatedAt.IsZero() {
			t.Fatalf("Create: created_at not filled")
		}
	}

	rows, err := repo.ListRecentForUser(ctx, tx, "u1", 10)
	if err != nil {
		t.Fatalf("ListRecentForUser: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("ListRecentForUser: got %d rows, want 2", len(rows))
	}
	for _, row := range rows {
		if row.UserID != "u1" {
			t.Fatalf("ListRecentForUser: leaked row for %s", row.UserID)
		}
	}

	rows, err = repo.ListRecentForUser(ctx, tx, "u1", 1)
	if err != nil {
		t.Fatalf("ListRecentForUser (limit): %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("ListRecentForUser (limit): got %d rows, want 1", len(rows))
	}

	rows, err = repo.ListRecentForUser(ctx, tx, "", 10)
	if err != nil || rows != nil {
		t.Fatalf("ListRecentForUser (empty user): got %v, %v", rows, err)
	}

	if err := repo.Create(ctx, tx, nil); err != nil {
		t.Fatalf("Create(nil) should be a no-op: %v", err)
	}
}
