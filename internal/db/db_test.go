package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/staysocial/staysocial-backend/internal/db/entities"
	"github.com/staysocial/staysocial-backend/internal/db/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) interfaces.Database {
	t.Helper()
	ctx := context.Background()
	db := NewInMemoryDatabase(nil)
	require.NoError(t, ConnectAndMigrate(ctx, db, AllSchemas()))
	t.Cleanup(func() { _ = db.Disconnect(ctx) })
	return db
}

func postData(title, day, clock, platform string) map[string]interface{} {
	return map[string]interface{}{
		"title":          title,
		"content":        title + " content",
		"platform":       platform,
		"status":         "scheduled",
		"scheduled_date": day,
		"scheduled_time": clock,
	}
}

func TestInMemoryDatabase(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	assert.True(t, db.IsHealthy(ctx))

	postRepo := db.Repository(entities.PostSchema)
	approvalRepo := db.Repository(entities.ApprovalSchema)

	t.Run("CRUD Operations", func(t *testing.T) {
		testCRUDOperations(t, ctx, postRepo)
	})

	t.Run("Query Operations", func(t *testing.T) {
		testQueryOperations(t, ctx, db)
	})

	t.Run("Constraint Validation", func(t *testing.T) {
		testConstraintValidation(t, ctx, postRepo, approvalRepo)
	})

	t.Run("Transactions", func(t *testing.T) {
		testTransactions(t, ctx, db, postRepo)
	})
}

func testCRUDOperations(t *testing.T, ctx context.Context, repo interfaces.Repository) {
	created, err := repo.Create(ctx, postData("Spring brunch", "2024-03-10", "10:00 AM", "instagram"))
	require.NoError(t, err)

	id, ok := created["id"].(string)
	require.True(t, ok)
	require.NotEmpty(t, id)
	assert.Equal(t, int64(1), created["seq"])
	assert.IsType(t, time.Time{}, created["created_at"])

	retrieved, err := repo.GetByID(ctx, interfaces.StringID(id))
	require.NoError(t, err)
	assert.Equal(t, "Spring brunch", retrieved["title"])

	updated, err := repo.Update(ctx, interfaces.StringID(id), map[string]interface{}{
		"title":    "Spring brunch menu",
		"hashtags": []string{"#brunch"},
		"seq":      int64(99),
	})
	require.NoError(t, err)
	assert.Equal(t, "Spring brunch menu", updated["title"])
	assert.Equal(t, []string{"#brunch"}, updated["hashtags"])
	assert.Equal(t, int64(1), updated["seq"], "seq is owned by the store")

	require.NoError(t, repo.Delete(ctx, interfaces.StringID(id)))

	_, err = repo.GetByID(ctx, interfaces.StringID(id))
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func testQueryOperations(t *testing.T, ctx context.Context, db interfaces.Database) {
	repo := db.Repository(entities.PostSchema)

	fixtures := []map[string]interface{}{
		postData("c", "2024-03-11", "09:00", "instagram"),
		postData("a", "2024-03-10", "11:00", "facebook"),
		postData("b", "2024-03-10", "08:00", "instagram"),
	}
	n, err := db.Seed(ctx, entities.PostSchema, fixtures)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	// Without an explicit order records come back in insertion order
	result, err := repo.FindMany(ctx, nil)
	require.NoError(t, err)
	require.Len(t, result.Data, 3)
	assert.Equal(t, "c", result.Data[0]["title"])
	assert.Equal(t, "a", result.Data[1]["title"])
	assert.Equal(t, "b", result.Data[2]["title"])

	result, err = repo.FindMany(ctx, &interfaces.Query{
		Where: &interfaces.Filters{
			Conditions: []interfaces.Filter{{Field: "platform", Value: "instagram"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Total)

	result, err = repo.FindMany(ctx, &interfaces.Query{
		OrderBy: []interfaces.OrderBy{
			{Field: "scheduled_date", Direction: "asc"},
			{Field: "title", Direction: "desc"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "b", result.Data[0]["title"])
	assert.Equal(t, "c", result.Data[2]["title"])

	limit, offset := 2, 2
	result, err = repo.FindMany(ctx, &interfaces.Query{Limit: &limit, Offset: &offset})
	require.NoError(t, err)
	assert.Len(t, result.Data, 1)
	assert.Equal(t, int64(3), result.Total)
	assert.Equal(t, 2, result.Page)

	count, err := repo.Count(ctx, &interfaces.Query{
		Where: &interfaces.Filters{
			Conditions: []interfaces.Filter{{
				Field:    "title",
				Operator: &interfaces.FilterOperator{In: []interface{}{"a", "b"}},
			}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func testConstraintValidation(t *testing.T, ctx context.Context, postRepo, approvalRepo interfaces.Repository) {
	_, err := postRepo.Create(ctx, map[string]interface{}{"title": "missing fields"})
	assert.ErrorIs(t, err, interfaces.ErrValidation)

	_, err = postRepo.Create(ctx, map[string]interface{}{
		"title":          "wrong type",
		"content":        "x",
		"platform":       "twitter",
		"scheduled_date": "2024-03-10",
		"scheduled_time": 900,
	})
	assert.ErrorIs(t, err, interfaces.ErrValidation)

	post, err := postRepo.Create(ctx, postData("linked", "2024-03-12", "12:00", "twitter"))
	require.NoError(t, err)
	postID := post["id"].(string)

	approval := map[string]interface{}{
		"title":              "Review me",
		"platform":           "Instagram",
		"content":            "x",
		"submitter_name":     "Sarah Kim",
		"submitter_initials": "SK",
		"submitted_at":       time.Now(),
		"post_id":            postID,
	}
	created, err := approvalRepo.Create(ctx, approval)
	require.NoError(t, err)
	assert.Equal(t, "pending", created["status"])

	approval["post_id"] = "non-existent-id"
	_, err = approvalRepo.Create(ctx, approval)
	assert.ErrorIs(t, err, interfaces.ErrForeignKeyConstraint)

	// SET_NULL clears the reference instead of blocking the delete
	require.NoError(t, postRepo.Delete(ctx, interfaces.StringID(postID)))
	reloaded, err := approvalRepo.GetByID(ctx, interfaces.StringID(created["id"].(string)))
	require.NoError(t, err)
	assert.Nil(t, reloaded["post_id"])
}

func testTransactions(t *testing.T, ctx context.Context, db interfaces.Database, repo interfaces.Repository) {
	err := db.Transaction(ctx, func(ctx context.Context, tx interfaces.Transaction) error {
		_, err := repo.Create(ctx, postData("committed", "2024-04-01", "09:00", "linkedin"))
		return err
	})
	require.NoError(t, err)

	count, err := repo.Count(ctx, &interfaces.Query{
		Where: &interfaces.Filters{Conditions: []interfaces.Filter{{Field: "title", Value: "committed"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	boom := errors.New("boom")
	err = db.Transaction(ctx, func(ctx context.Context, tx interfaces.Transaction) error {
		if _, err := repo.Create(ctx, postData("rolled back", "2024-04-02", "09:00", "linkedin")); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	count, err = repo.Count(ctx, &interfaces.Query{
		Where: &interfaces.Filters{Conditions: []interfaces.Filter{{Field: "title", Value: "rolled back"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestRollbackRevertsOnlyItsOwnWrites(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	postRepo := db.Repository(entities.PostSchema)
	approvalRepo := db.Repository(entities.ApprovalSchema)

	kept, err := postRepo.Create(ctx, postData("kept", "2024-05-01", "09:00", "instagram"))
	require.NoError(t, err)
	keptID := interfaces.StringID(kept["id"].(string))
	linked, err := approvalRepo.Create(ctx, map[string]interface{}{
		"title":              "Linked",
		"platform":           "instagram",
		"content":            "Linked review",
		"submitter_name":     "Sarah Kim",
		"submitter_initials": "SK",
		"submitted_at":       time.Now(),
		"status":             "pending",
		"post_id":            kept["id"],
	})
	require.NoError(t, err)
	linkedID := interfaces.StringID(linked["id"].(string))

	var otherID interfaces.ID
	boom := errors.New("boom")
	err = db.Transaction(ctx, func(txCtx context.Context, tx interfaces.Transaction) error {
		if _, err := postRepo.Create(txCtx, postData("inside", "2024-05-02", "09:00", "linkedin")); err != nil {
			return err
		}
		if _, err := postRepo.Update(txCtx, keptID, map[string]interface{}{"title": "renamed"}); err != nil {
			return err
		}
		if err := postRepo.Delete(txCtx, keptID); err != nil {
			return err
		}

		// another request, outside the transaction
		other, err := postRepo.Create(ctx, postData("outside", "2024-05-03", "09:00", "facebook"))
		if err != nil {
			return err
		}
		otherID = interfaces.StringID(other["id"].(string))
		return boom
	})
	require.ErrorIs(t, err, boom)

	restored, err := postRepo.GetByID(ctx, keptID)
	require.NoError(t, err)
	assert.Equal(t, "kept", restored["title"])

	reloaded, err := approvalRepo.GetByID(ctx, linkedID)
	require.NoError(t, err)
	assert.Equal(t, kept["id"], reloaded["post_id"])

	_, err = postRepo.GetByID(ctx, otherID)
	assert.NoError(t, err)

	count, err := postRepo.Count(ctx, &interfaces.Query{
		Where: &interfaces.Filters{Conditions: []interfaces.Filter{{Field: "title", Value: "inside"}}},
	})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUpdateWhere(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := db.Repository(entities.PostSchema)

	created, err := repo.Create(ctx, postData("guarded", "2024-05-01", "09:00", "instagram"))
	require.NoError(t, err)
	id := interfaces.StringID(created["id"].(string))
	scheduled := &interfaces.Filters{Conditions: []interfaces.Filter{{Field: "status", Value: "scheduled"}}}

	updated, err := repo.UpdateWhere(ctx, id, scheduled, map[string]interface{}{"status": "published"})
	require.NoError(t, err)
	assert.Equal(t, "published", updated["status"])

	_, err = repo.UpdateWhere(ctx, id, scheduled, map[string]interface{}{"status": "draft"})
	assert.ErrorIs(t, err, interfaces.ErrConditionFailed)

	current, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "published", current["status"])

	_, err = repo.UpdateWhere(ctx, interfaces.StringID("missing"), scheduled, map[string]interface{}{"status": "draft"})
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestDisconnectedDatabase(t *testing.T) {
	ctx := context.Background()
	db := NewInMemoryDatabase(nil)

	_, err := db.Seed(ctx, entities.PostSchema, nil)
	assert.ErrorIs(t, err, interfaces.ErrDatabaseNotConnected)

	repo := db.Repository(entities.PostSchema)
	_, err = repo.FindMany(ctx, nil)
	assert.ErrorIs(t, err, interfaces.ErrDatabaseNotConnected)
}

func TestNewDatabaseRejectsUnknownType(t *testing.T) {
	_, err := NewDatabase(&Config{Type: "postgres"}, nil)
	assert.Error(t, err)

	db, err := NewDatabase(nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, db)
}
