package mongostore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"taskflow-backend/internal/auth"
	"taskflow-backend/internal/db"
	"taskflow-backend/internal/ids"
	"taskflow-backend/internal/tasks"
)

func TestUpdateDoc(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	title := "x"
	got := updateDoc(tasks.Changes{Title: &title, ClearDueDate: true}, now)

	m := got.Map()
	set, ok := m["$set"].(bson.D)
	if !ok {
		t.Fatalf("missing $set: %v", got)
	}
	sm := set.Map()
	if sm["title"] != "x" || sm["updated_at"] != now {
		t.Errorf("$set = %v", set)
	}
	if _, ok := sm["due_date"]; ok {
		t.Error("due_date must not be set when clearing")
	}
	if _, ok := m["$unset"]; !ok {
		t.Error("missing $unset for cleared due date")
	}

	due := now.Add(time.Hour)
	got = updateDoc(tasks.Changes{DueDate: &due}, now)
	if _, ok := got.Map()["$unset"]; ok {
		t.Error("unexpected $unset")
	}
}

func TestTaskDocRoundTrip(t *testing.T) {
	due := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	in := tasks.Task{
		ID: "t1", UserID: "u1", Title: "Write report", Priority: tasks.PriorityHigh,
		Status: tasks.StatusInProgress, DueDate: &due,
		CreatedAt: due.Add(-time.Hour), UpdatedAt: due.Add(-time.Minute),
	}
	out := toTaskDoc(in).task()
	if out.ID != in.ID || out.Priority != in.Priority || out.Status != in.Status {
		t.Errorf("out = %+v", out)
	}
	if out.DueDate == nil || !out.DueDate.Equal(due) {
		t.Errorf("due = %v", out.DueDate)
	}
}

// TestStoreAgainstServer runs when MONGO_TEST_URL points at a disposable
// MongoDB instance.
func TestStoreAgainstServer(t *testing.T) {
	url := os.Getenv("MONGO_TEST_URL")
	if url == "" {
		t.Skip("MONGO_TEST_URL not set")
	}
	ctx := context.Background()
	database, err := db.ConnectMongo(ctx, db.Config{URL: url, Name: "taskflow_test_" + ids.NewRequestID()})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Drop(context.Background())
		_ = database.Client().Disconnect(context.Background())
	})

	s := New(database)
	if err := s.EnsureIndexes(ctx); err != nil {
		t.Fatal(err)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	acct := auth.Account{ID: "u1", Email: "a@example.com", FullName: "A", PasswordHash: "h", CreatedAt: now}
	if err := s.CreateAccount(ctx, acct); err != nil {
		t.Fatal(err)
	}
	acct.ID = "u2"
	if err := s.CreateAccount(ctx, acct); !errors.Is(err, auth.ErrEmailTaken) {
		t.Fatalf("duplicate email err = %v", err)
	}

	tk := tasks.Task{ID: "t1", UserID: "u1", Title: "T", Priority: tasks.PriorityLow, Status: tasks.StatusPending, CreatedAt: now, UpdatedAt: now}
	if err := s.InsertTask(ctx, tk); err != nil {
		t.Fatal(err)
	}
	st := tasks.StatusCompleted
	got, err := s.UpdateTask(ctx, "u1", "t1", tasks.Changes{Status: &st}, now.Add(time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != tasks.StatusCompleted || got.Title != "T" {
		t.Errorf("updated = %+v", got)
	}
	if _, err := s.UpdateTask(ctx, "u2", "t1", tasks.Changes{Status: &st}, now); !errors.Is(err, tasks.ErrTaskNotFound) {
		t.Errorf("foreign update err = %v", err)
	}
	counts, err := s.CountByStatus(ctx, "u1")
	if err != nil || counts[tasks.StatusCompleted] != 1 {
		t.Errorf("counts = %v, err = %v", counts, err)
	}
	if err := s.DeleteTask(ctx, "u1", "t1"); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteTask(ctx, "u1", "t1"); !errors.Is(err, tasks.ErrTaskNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}
