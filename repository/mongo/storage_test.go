package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"taskboard/internal/domain/errors"
	"taskboard/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskDocumentMapping(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	oid := primitive.NewObjectID()

	doc := taskDocument{ID: oid, TaskName: "Buy milk", Desc: "2%", Priority: "urgent", CreatedAt: created}
	task := doc.toModel()

	assert.Equal(t, oid.Hex(), task.ID)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, "2%", task.Description)
	assert.Equal(t, models.PriorityLow, task.Priority)
	assert.Equal(t, created, task.CreatedAt)

	back := taskFromModel(&task)
	assert.True(t, back.ID.IsZero())
	assert.Equal(t, "low", back.Priority)
}

func TestDocumentFieldNames(t *testing.T) {
	raw, err := bson.Marshal(taskDocument{ID: primitive.NewObjectID(), TaskName: "T", Desc: "D", Priority: "high"})
	require.NoError(t, err)

	var fields bson.M
	require.NoError(t, bson.Unmarshal(raw, &fields))
	for _, key := range []string{"_id", "taskname", "desc", "priority", "createdAt"} {
		assert.Contains(t, fields, key)
	}

	raw, err = bson.Marshal(userDocument{Name: "Ann", Email: "ann@x.com", Password: "hash"})
	require.NoError(t, err)
	fields = bson.M{}
	require.NoError(t, bson.Unmarshal(raw, &fields))
	assert.NotContains(t, fields, "_id")
	assert.Equal(t, "hash", fields["password"])
}

func TestUserDocumentToModel(t *testing.T) {
	oid := primitive.NewObjectID()
	user := userDocument{ID: oid, Name: "Ann", Email: "ann@x.com", Password: "hash"}.toModel()

	assert.Equal(t, &models.User{ID: oid.Hex(), Name: "Ann", Email: "ann@x.com", PasswordHash: "hash"}, user)
}

// setupTestMongo connects to TASKBOARD_TEST_MONGO and uses a throwaway
// database. Skipped when the variable is unset.
func setupTestMongo(t *testing.T) *Storage {
	t.Helper()
	uri := os.Getenv("TASKBOARD_TEST_MONGO")
	if uri == "" {
		t.Skip("TASKBOARD_TEST_MONGO not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	dbName := "taskboard_test_" + primitive.NewObjectID().Hex()
	storage, err := NewStorage(ctx, uri, dbName, nil)
	if err != nil {
		t.Skipf("skipping: cannot connect to mongo: %v", err)
	}
	t.Cleanup(func() {
		_ = storage.client.Database(dbName).Drop(context.Background())
		_ = storage.Close(context.Background())
	})
	return storage
}

func TestStorageIntegration(t *testing.T) {
	storage := setupTestMongo(t)
	ctx := context.Background()

	user := &models.User{Name: "Ann", Email: "ann@x.com", PasswordHash: "hash"}
	require.NoError(t, storage.CreateUser(ctx, user))
	assert.ErrorIs(t, storage.CreateUser(ctx, &models.User{Name: "A", Email: "ann@x.com"}), errors.ErrUserAlreadyExists)

	got, err := storage.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	require.NoError(t, storage.UpdatePassword(ctx, "ann@x.com", "new"))
	got, err = storage.GetUserByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	assert.Equal(t, "new", got.PasswordHash)

	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	task := &models.Task{Title: "T", Description: "D", Priority: models.PriorityHigh, CreatedAt: created}
	require.NoError(t, storage.CreateTask(ctx, task))

	fetched, err := storage.GetTaskByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, *task, *fetched)

	update := &models.Task{Title: "T2", Description: "D2", Priority: models.PriorityMedium}
	require.NoError(t, storage.UpdateTask(ctx, task.ID, update))
	assert.Equal(t, created, update.CreatedAt)

	tasks, err := storage.GetTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "T2", tasks[0].Title)

	require.NoError(t, storage.DeleteTask(ctx, task.ID))
	assert.ErrorIs(t, storage.DeleteTask(ctx, task.ID), errors.ErrTaskNotFound)
}
