// Package mongodb implements a secondary key-value database engine
// over MongoDB, using go.mongodb.org/mongo-driver. Each record is a
// document keyed by _id with an opaque "value" field.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mdbfs/mdbfs/internal/dbmanager/kv"
	"github.com/mdbfs/mdbfs/internal/mlog"
)

var errNoHandle = errors.New("mongodb: no database is open")

const defaultCollection = "records"

type recordDoc struct {
	Key   string `bson:"_id"`
	Value []byte `bson:"value"`
}

// Manager implements kv.Manager against a MongoDB collection. Open's
// path argument is a mongodb:// connection URI; the database name is
// taken from the URI's path component, falling back to "mdbfs".
type Manager struct {
	mu     sync.Mutex
	client *mongo.Client
	coll   *mongo.Collection
	dbName string
}

func New() *Manager {
	return &Manager{}
}

var _ kv.Manager = (*Manager)(nil)

func (m *Manager) Open(uri string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil {
		mlog.Warn("mongodb: open: it looks like a database is already loaded")
		mlog.Warn("mongodb: open: dropping the (previous?) session")
		m.client.Disconnect(context.Background())
		m.client = nil
	}

	mlog.Info("mongodb: connecting to %s", uri)

	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return fmt.Errorf("mongodb: open: %w", err)
	}
	if err := client.Ping(context.Background(), nil); err != nil {
		client.Disconnect(context.Background())
		return fmt.Errorf("mongodb: open: %w", err)
	}

	dbName := databaseNameFromURI(uri)
	m.client = client
	m.dbName = dbName
	m.coll = client.Database(dbName).Collection(defaultCollection)
	return nil
}

func databaseNameFromURI(uri string) string {
	rest := uri
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+len("://"):]
	}
	idx := strings.Index(rest, "/")
	if idx < 0 || idx == len(rest)-1 {
		return "mdbfs"
	}
	name := rest[idx+1:]
	if q := strings.Index(name, "?"); q >= 0 {
		name = name[:q]
	}
	if name == "" {
		return "mdbfs"
	}
	return name
}

func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		mlog.Warn("mongodb: close: attempting to close a closed connection")
		return
	}
	mlog.Info("mongodb: closing connection")
	m.client.Disconnect(context.Background())
	m.client = nil
	m.coll = nil
}

func (m *Manager) GetDatabaseName() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.coll == nil {
		return "", errNoHandle
	}
	return m.dbName, nil
}

func (m *Manager) GetRecordKeys() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.coll == nil {
		return nil, errNoHandle
	}

	mlog.Debug("mongodb: listing record keys")

	cur, err := m.coll.Find(context.Background(), bson.D{}, options.Find().SetProjection(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		mlog.Warn("mongodb: get_record_keys: %v", err)
		return nil, err
	}
	defer cur.Close(context.Background())

	keys := []string{}
	for cur.Next(context.Background()) {
		var doc recordDoc
		if err := cur.Decode(&doc); err != nil {
			mlog.Warn("mongodb: get_record_keys: unexpected decode error: %v", err)
			continue
		}
		keys = append(keys, doc.Key)
	}
	if err := cur.Err(); err != nil {
		mlog.Warn("mongodb: get_record_keys: %v", err)
		return nil, err
	}
	return keys, nil
}

func (m *Manager) GetRecordValue(key string) ([]byte, error) {
	if key == "" {
		mlog.Warn("mongodb: get_record_value: key is missing")
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.coll == nil {
		return nil, errNoHandle
	}

	mlog.Debug("mongodb: get_record_value: querying value for key %q", key)

	var doc recordDoc
	err := m.coll.FindOne(context.Background(), bson.D{{Key: "_id", Value: key}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		mlog.Warn("mongodb: get_record_value: %v", err)
		return nil, err
	}
	return doc.Value, nil
}

func (m *Manager) SetRecordValue(key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("mongodb: set_record_value: key is missing")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.coll == nil {
		return errNoHandle
	}

	mlog.Debug("mongodb: set_record_value: updating value for key %q", key)

	_, err := m.coll.UpdateOne(
		context.Background(),
		bson.D{{Key: "_id", Value: key}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "value", Value: data}}}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		mlog.Warn("mongodb: set_record_value: %v", err)
		return err
	}
	return nil
}

// RenameRecord is get+delete+insert, the same three-step, no-rollback
// discipline as the other engines here.
func (m *Manager) RenameRecord(oldKey, newKey string) error {
	if oldKey == "" || newKey == "" {
		return fmt.Errorf("mongodb: rename_record: missing argument")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.coll == nil {
		return errNoHandle
	}

	mlog.Debug("mongodb: rename_record: renaming key %q to %q", oldKey, newKey)

	ctx := context.Background()
	var doc recordDoc
	if err := m.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oldKey}}).Decode(&doc); err != nil {
		mlog.Warn("mongodb: rename_record: %v", err)
		return err
	}

	if _, err := m.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oldKey}}); err != nil {
		mlog.Warn("mongodb: rename_record: delete failed, key %q is now orphaned: %v", oldKey, err)
		return err
	}

	if _, err := m.coll.InsertOne(ctx, recordDoc{Key: newKey, Value: doc.Value}); err != nil {
		mlog.Warn("mongodb: rename_record: insert failed, value for %q is lost: %v", oldKey, err)
		return err
	}
	return nil
}

func (m *Manager) CreateRecord(key string) error {
	if key == "" {
		return fmt.Errorf("mongodb: create_record: key is missing")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.coll == nil {
		return errNoHandle
	}

	mlog.Debug("mongodb: create_record: inserting key %q", key)

	_, err := m.coll.InsertOne(context.Background(), recordDoc{Key: key, Value: []byte{}})
	if err != nil {
		mlog.Warn("mongodb: create_record: %v", err)
		return err
	}
	return nil
}

func (m *Manager) RemoveRecord(key string) error {
	if key == "" {
		return fmt.Errorf("mongodb: remove_record: key is missing")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.coll == nil {
		return errNoHandle
	}

	mlog.Debug("mongodb: remove_record: deleting key %q", key)

	_, err := m.coll.DeleteOne(context.Background(), bson.D{{Key: "_id", Value: key}})
	if err != nil {
		mlog.Warn("mongodb: remove_record: %v", err)
		return err
	}
	return nil
}
