package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jStore keeps owners and tasks as a graph:
//
//	(:Owner {key})-[:OWNS]->(:Task {id, name, ...})
type Neo4jStore struct {
	driver neo4j.DriverWithContext
	now    func() time.Time
}

// OpenNeo4j connects with basic auth and verifies connectivity.
func OpenNeo4j(ctx context.Context, uri, user, password string) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("connect to neo4j: %w", err)
	}
	s := &Neo4jStore{driver: driver, now: time.Now}
	if err := s.initConstraints(ctx); err != nil {
		driver.Close(ctx)
		return nil, err
	}
	return s, nil
}

func (s *Neo4jStore) initConstraints(ctx context.Context) error {
	for _, q := range []string{
		"CREATE CONSTRAINT owner_key IF NOT EXISTS FOR (o:Owner) REQUIRE o.key IS UNIQUE",
		"CREATE CONSTRAINT task_id IF NOT EXISTS FOR (t:Task) REQUIRE t.id IS UNIQUE",
	} {
		if _, err := s.write(ctx, q, nil); err != nil {
			return fmt.Errorf("create neo4j constraint: %w", err)
		}
	}
	return nil
}

func (s *Neo4jStore) Close(ctx context.Context) error { return s.driver.Close(ctx) }

func (s *Neo4jStore) AddOwner(ctx context.Context, key, name string) (Owner, error) {
	if key == "" {
		return Owner{}, persistenceErr("add owner", errEmptyKey)
	}
	recs, err := s.write(ctx,
		"MERGE (o:Owner {key: $key}) "+
			"ON CREATE SET o.id = $id, o.name = $name, o.created_at = $created "+
			"RETURN o.id, o.key, o.name, o.created_at",
		map[string]any{"key": key, "id": uuid.NewString(), "name": name, "created": s.now().UnixMilli()})
	if err != nil {
		return Owner{}, persistenceErr("add owner", err)
	}
	if len(recs) == 0 {
		return Owner{}, persistenceErr("add owner", fmt.Errorf("no record returned"))
	}
	return ownerFromRecord(recs[0])
}

func (s *Neo4jStore) ListOwners(ctx context.Context) ([]Owner, error) {
	recs, err := s.read(ctx,
		"MATCH (o:Owner) RETURN o.id, o.key, o.name, o.created_at ORDER BY o.key", nil)
	if err != nil {
		return nil, persistenceErr("list owners", err)
	}
	out := make([]Owner, 0, len(recs))
	for _, r := range recs {
		o, err := ownerFromRecord(r)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

const taskReturn = "RETURN t.id, t.name, t.description, t.due_at, t.completed, o.key, t.created_at"

func (s *Neo4jStore) CreateTask(ctx context.Context, name, description string, dueAt time.Time, ownerKey string) (Task, error) {
	recs, err := s.write(ctx,
		"MATCH (o:Owner {key: $owner}) "+
			"CREATE (o)-[:OWNS]->(t:Task {id: $id, name: $name, description: $description, "+
			"due_at: $due, completed: false, created_at: $created}) "+taskReturn,
		map[string]any{
			"owner":       ownerKey,
			"id":          uuid.NewString(),
			"name":        name,
			"description": description,
			"due":         dueAt.UnixMilli(),
			"created":     s.now().UnixMilli(),
		})
	if err != nil {
		return Task{}, persistenceErr("create task", err)
	}
	if len(recs) == 0 {
		return Task{}, ErrUnknownOwner
	}
	return taskFromRecord(recs[0])
}

func (s *Neo4jStore) ListOpenTasks(ctx context.Context, ownerKey string) ([]Task, error) {
	return s.queryTasks(ctx,
		"MATCH (o:Owner {key: $owner})-[:OWNS]->(t:Task) "+taskReturn+" ORDER BY t.due_at, t.created_at",
		map[string]any{"owner": ownerKey})
}

func (s *Neo4jStore) ListTasksInRange(ctx context.Context, ownerKey string, start, end time.Time) ([]Task, error) {
	return s.queryTasks(ctx,
		"MATCH (o:Owner {key: $owner})-[:OWNS]->(t:Task) "+
			"WHERE t.due_at >= $start AND t.due_at <= $end "+taskReturn+" ORDER BY t.due_at, t.created_at",
		map[string]any{"owner": ownerKey, "start": start.UnixMilli(), "end": end.UnixMilli()})
}

func (s *Neo4jStore) CompleteTask(ctx context.Context, taskID string) (Task, error) {
	recs, err := s.write(ctx,
		"MATCH (o:Owner)-[:OWNS]->(t:Task {id: $id}) SET t.completed = true "+taskReturn,
		map[string]any{"id": taskID})
	if err != nil {
		return Task{}, persistenceErr("complete task", err)
	}
	if len(recs) == 0 {
		return Task{}, ErrNotFound
	}
	return taskFromRecord(recs[0])
}

func (s *Neo4jStore) queryTasks(ctx context.Context, cypher string, params map[string]any) ([]Task, error) {
	recs, err := s.read(ctx, cypher, params)
	if err != nil {
		return nil, persistenceErr("query tasks", err)
	}
	out := make([]Task, 0, len(recs))
	for _, r := range recs {
		t, err := taskFromRecord(r)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Neo4jStore) read(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)
	res, err := session.ExecuteRead(ctx, collect(ctx, cypher, params))
	if err != nil {
		return nil, err
	}
	return res.([]*neo4j.Record), nil
}

func (s *Neo4jStore) write(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)
	res, err := session.ExecuteWrite(ctx, collect(ctx, cypher, params))
	if err != nil {
		return nil, err
	}
	return res.([]*neo4j.Record), nil
}

func collect(ctx context.Context, cypher string, params map[string]any) neo4j.ManagedTransactionWork {
	return func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	}
}

func taskFromRecord(r *neo4j.Record) (Task, error) {
	if len(r.Values) < 7 {
		return Task{}, persistenceErr("decode task", fmt.Errorf("expected 7 values, got %d", len(r.Values)))
	}
	var t Task
	var ok bool
	if t.ID, ok = r.Values[0].(string); !ok {
		return Task{}, persistenceErr("decode task", fmt.Errorf("id is %T", r.Values[0]))
	}
	t.Name, _ = r.Values[1].(string)
	t.Description, _ = r.Values[2].(string)
	due, _ := r.Values[3].(int64)
	t.DueAt = time.UnixMilli(due)
	t.Completed, _ = r.Values[4].(bool)
	t.OwnerKey, _ = r.Values[5].(string)
	created, _ := r.Values[6].(int64)
	t.CreatedAt = time.UnixMilli(created)
	return t, nil
}

func ownerFromRecord(r *neo4j.Record) (Owner, error) {
	if len(r.Values) < 4 {
		return Owner{}, persistenceErr("decode owner", fmt.Errorf("expected 4 values, got %d", len(r.Values)))
	}
	var o Owner
	o.ID, _ = r.Values[0].(string)
	o.Key, _ = r.Values[1].(string)
	o.Name, _ = r.Values[2].(string)
	created, _ := r.Values[3].(int64)
	o.CreatedAt = time.UnixMilli(created)
	return o, nil
}
