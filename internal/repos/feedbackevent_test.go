package repos

import (
	"context"
	"testing"

	"gorm.io/datatypes"

	"github.com/socratia/socratia-backend/internal/repos/testutil"
	"github.com/socratia/socratia-backend/internal/types"
)

func TestFeedbackEventRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewFeedbackEventRepo(db, testutil.Logger(t))
	ctx := context.Background()

	events := []*types.FeedbackEvent{
		{UserID: "u1", RuleID: "r1", Satisfaction: 0.8, Data: datatypes.JSON([]byte(`{"success":true}`))},
		{UserID: "u1", Satisfaction: 0.2, Data: datatypes.JSON([]byte(`{}`))},
		{UserID: "u2", RuleID: "r2", Satisfaction: 0.5, Data: datatypes.JSON([]byte(`{}`))},
	}
	for _, ev := range events {
		if err := repo.Create(ctx, tx, ev); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	rows, err := repo.ListRecentForUser(ctx, tx, "u1", 10)
	if err != nil {
		t.Fatalf("ListRecentForUser: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("ListRecentForUser: got %d rows, want 2", len(rows))
	}

	rows, err = repo.ListRecentForUser(ctx, tx, "u2", 10)
	if err != nil {
		t.Fatalf("ListRecentForUser: %v", err)
	}
	if len(rows) != 1 || rows[0].RuleID != "r2" || rows[0].Satisfaction != 0.5 {
		t.Fatalf("ListRecentForUser: unexpected row %+v", rows[0])
	}
}
