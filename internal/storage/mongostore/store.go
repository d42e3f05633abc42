// Package mongostore implements the account, task and event stores on
// MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"taskflow-backend/internal/analytics"
	"taskflow-backend/internal/auth"
	"taskflow-backend/internal/ids"
	"taskflow-backend/internal/tasks"
)

const (
	usersColl  = "users"
	tasksColl  = "tasks"
	eventsColl = "analytics_events"
)

type Store struct {
	users  *mongo.Collection
	tasks  *mongo.Collection
	events *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		users:  db.Collection(usersColl),
		tasks:  db.Collection(tasksColl),
		events: db.Collection(eventsColl),
	}
}

// EnsureIndexes creates the unique and lookup indexes the store relies on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("users index: %w", err)
	}
	if _, err := s.tasks.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: 1}, {Key: "seq", Value: 1}},
	}); err != nil {
		return fmt.Errorf("tasks index: %w", err)
	}
	if _, err := s.events.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "source_event_key", Value: 1}},
		Options: options.Index().SetUnique(true).SetSparse(true),
	}); err != nil {
		return fmt.Errorf("events index: %w", err)
	}
	return nil
}

// ----------------------
//        ACCOUNTS
// ----------------------

type accountDoc struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	FullName     string    `bson:"full_name"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
}

func toAccountDoc(a auth.Account) accountDoc {
	return accountDoc{ID: a.ID, Email: a.Email, FullName: a.FullName, PasswordHash: a.PasswordHash, CreatedAt: a.CreatedAt}
}

func (d accountDoc) account() auth.Account {
	return auth.Account{ID: d.ID, Email: d.Email, FullName: d.FullName, PasswordHash: d.PasswordHash, CreatedAt: d.CreatedAt.UTC()}
}

func (s *Store) CreateAccount(ctx context.Context, a auth.Account) error {
	_, err := s.users.InsertOne(ctx, toAccountDoc(a))
	if mongo.IsDuplicateKeyError(err) {
		return auth.ErrEmailTaken
	}
	return err
}

func (s *Store) AccountByEmail(ctx context.Context, email string) (auth.Account, error) {
	return s.findAccount(ctx, bson.D{{Key: "email", Value: email}})
}

func (s *Store) AccountByID(ctx context.Context, id string) (auth.Account, error) {
	return s.findAccount(ctx, bson.D{{Key: "_id", Value: id}})
}

func (s *Store) findAccount(ctx context.Context, filter bson.D) (auth.Account, error) {
	var d accountDoc
	if err := s.users.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return auth.Account{}, auth.ErrAccountNotFound
		}
		return auth.Account{}, err
	}
	return d.account(), nil
}

// ----------------------
//         TASKS
// ----------------------

type taskDoc struct {
	ID          string     `bson:"_id"`
	UserID      string     `bson:"user_id"`
	Title       string     `bson:"title"`
	Description string     `bson:"description"`
	Priority    string     `bson:"priority"`
	Status      string     `bson:"status"`
	DueDate     *time.Time `bson:"due_date,omitempty"`
	CreatedAt   time.Time  `bson:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at"`
	Seq         int64      `bson:"seq"`
}

func toTaskDoc(t tasks.Task) taskDoc {
	return taskDoc{
		ID: t.ID, UserID: t.UserID, Title: t.Title, Description: t.Description,
		Priority: string(t.Priority), Status: string(t.Status),
		DueDate: t.DueDate, CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt,
	}
}

func (d taskDoc) task() tasks.Task {
	t := tasks.Task{
		ID: d.ID, UserID: d.UserID, Title: d.Title, Description: d.Description,
		Priority: tasks.Priority(d.Priority), Status: tasks.Status(d.Status),
		CreatedAt: d.CreatedAt.UTC(), UpdatedAt: d.UpdatedAt.UTC(),
	}
	if d.DueDate != nil {
		due := d.DueDate.UTC()
		t.DueDate = &due
	}
	return t
}

func (s *Store) InsertTask(ctx context.Context, t tasks.Task) error {
	d := toTaskDoc(t)
	d.Seq = ids.NewSequence()
	_, err := s.tasks.InsertOne(ctx, d)
	return err
}

func (s *Store) TaskByID(ctx context.Context, id string) (tasks.Task, error) {
	var d taskDoc
	if err := s.tasks.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return tasks.Task{}, tasks.ErrTaskNotFound
		}
		return tasks.Task{}, err
	}
	return d.task(), nil
}

func (s *Store) TasksByOwner(ctx context.Context, ownerID string) ([]tasks.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "seq", Value: 1}})
	cur, err := s.tasks.Find(ctx, bson.D{{Key: "user_id", Value: ownerID}}, opts)
	if err != nil {
		return nil, err
	}
	var docs []taskDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]tasks.Task, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.task())
	}
	return out, nil
}

func (s *Store) CountByStatus(ctx context.Context, ownerID string) (map[tasks.Status]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "user_id", Value: ownerID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "n", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := s.tasks.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Status string `bson:"_id"`
		N      int    `bson:"n"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	counts := make(map[tasks.Status]int, len(rows))
	for _, r := range rows {
		counts[tasks.Status(r.Status)] = r.N
	}
	return counts, nil
}

// updateDoc renders c as a $set/$unset update document.
func updateDoc(c tasks.Changes, now time.Time) bson.D {
	set := bson.D{}
	if c.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *c.Title})
	}
	if c.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *c.Description})
	}
	if c.Priority != nil {
		set = append(set, bson.E{Key: "priority", Value: string(*c.Priority)})
	}
	if c.Status != nil {
		set = append(set, bson.E{Key: "status", Value: string(*c.Status)})
	}
	if c.DueDate != nil && !c.ClearDueDate {
		set = append(set, bson.E{Key: "due_date", Value: *c.DueDate})
	}
	set = append(set, bson.E{Key: "updated_at", Value: now})

	update := bson.D{{Key: "$set", Value: set}}
	if c.ClearDueDate {
		update = append(update, bson.E{Key: "$unset", Value: bson.D{{Key: "due_date", Value: ""}}})
	}
	return update
}

func (s *Store) UpdateTask(ctx context.Context, ownerID, id string, c tasks.Changes, now time.Time) (tasks.Task, error) {
	filter := bson.D{{Key: "_id", Value: id}, {Key: "user_id", Value: ownerID}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var d taskDoc
	if err := s.tasks.FindOneAndUpdate(ctx, filter, updateDoc(c, now), opts).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return tasks.Task{}, tasks.ErrTaskNotFound
		}
		return tasks.Task{}, err
	}
	return d.task(), nil
}

func (s *Store) DeleteTask(ctx context.Context, ownerID, id string) error {
	res, err := s.tasks.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}, {Key: "user_id", Value: ownerID}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return tasks.ErrTaskNotFound
	}
	return nil
}

// ----------------------
//        EVENTS
// ----------------------

// WriteEvent inserts one analytics event; a repeated source_event_key hits
// the sparse unique index and is ignored.
func (s *Store) WriteEvent(ctx context.Context, e analytics.Event) error {
	_, err := s.events.InsertOne(ctx, e)
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}
