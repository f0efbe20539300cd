// Package s3 implements a secondary key-value database engine over
// Amazon S3 (or an S3-compatible endpoint), wrapping internal/s3client
// so that bucket objects play the role of records.
package s3

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/mdbfs/mdbfs/internal/credentials"
	"github.com/mdbfs/mdbfs/internal/dbmanager/kv"
	"github.com/mdbfs/mdbfs/internal/mlog"
	"github.com/mdbfs/mdbfs/internal/s3client"
)

var errNoHandle = errors.New("s3: no database is open")

// Manager implements kv.Manager against an S3 bucket. Open's path
// argument is the bucket name, optionally suffixed with "@region"
// (defaulting to AWS_REGION or us-east-1). The endpoint used for
// S3-compatible services is read from MDBFS_S3_ENDPOINT so that the
// same code path serves both AWS S3 and local testing stacks.
type Manager struct {
	mu     sync.Mutex
	client *s3client.Client
	bucket string
}

func New() *Manager {
	return &Manager{}
}

var _ kv.Manager = (*Manager)(nil)

func (m *Manager) Open(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil {
		mlog.Warn("s3: open: it looks like a database is already loaded")
		mlog.Warn("s3: open: dropping the (previous?) session")
		m.client = nil
	}

	bucket, region := path, os.Getenv("AWS_REGION")
	if idx := strings.LastIndex(path, "@"); idx >= 0 {
		bucket, region = path[:idx], path[idx+1:]
	}
	if region == "" {
		region = "us-east-1"
	}

	mlog.Info("s3: opening bucket %q in region %q", bucket, region)

	creds := credentials.NewCredentials()
	if err := creds.LoadFromEnvironment(); err != nil {
		mlog.Debug("s3: open: no environment credentials, falling back to the default provider chain")
		creds = nil
	}

	endpoint := os.Getenv("MDBFS_S3_ENDPOINT")
	client := s3client.NewClientWithEndpoint(bucket, region, endpoint, creds)

	m.client = client
	m.bucket = bucket
	return nil
}

func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		mlog.Warn("s3: close: attempting to close a closed connection")
		return
	}
	mlog.Info("s3: closing bucket %q", m.bucket)
	m.client = nil
}

func (m *Manager) GetDatabaseName() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		return "", errNoHandle
	}
	return m.bucket, nil
}

func (m *Manager) GetRecordKeys() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		return nil, errNoHandle
	}

	mlog.Debug("s3: listing object keys")

	keys, err := m.client.ListObjects(context.Background(), "")
	if err != nil {
		mlog.Warn("s3: get_record_keys: %v", err)
		return nil, err
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}

func (m *Manager) GetRecordValue(key string) ([]byte, error) {
	if key == "" {
		mlog.Warn("s3: get_record_value: key is missing")
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		return nil, errNoHandle
	}

	mlog.Debug("s3: get_record_value: fetching object %q", key)

	data, err := m.client.GetObject(context.Background(), key)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		mlog.Warn("s3: get_record_value: %v", err)
		return nil, err
	}
	return data, nil
}

func (m *Manager) SetRecordValue(key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("s3: set_record_value: key is missing")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		return errNoHandle
	}

	mlog.Debug("s3: set_record_value: putting object %q", key)

	if err := m.client.PutObject(context.Background(), key, data); err != nil {
		mlog.Warn("s3: set_record_value: %v", err)
		return err
	}
	return nil
}

// RenameRecord is copy-then-delete, same discipline as the other
// engines here: on a delete failure after a successful copy the object
// exists under both keys; no rollback is attempted.
func (m *Manager) RenameRecord(oldKey, newKey string) error {
	if oldKey == "" || newKey == "" {
		return fmt.Errorf("s3: rename_record: missing argument")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		return errNoHandle
	}

	mlog.Debug("s3: rename_record: renaming object %q to %q", oldKey, newKey)

	ctx := context.Background()
	if err := m.client.CopyObject(ctx, oldKey, newKey); err != nil {
		mlog.Warn("s3: rename_record: copy failed: %v", err)
		return err
	}
	if err := m.client.DeleteObject(ctx, oldKey); err != nil {
		mlog.Warn("s3: rename_record: delete of %q failed, object now exists under both keys: %v", oldKey, err)
		return err
	}
	return nil
}

func (m *Manager) CreateRecord(key string) error {
	if key == "" {
		return fmt.Errorf("s3: create_record: key is missing")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		return errNoHandle
	}

	mlog.Debug("s3: create_record: putting empty object %q", key)

	if err := m.client.PutObject(context.Background(), key, []byte{}); err != nil {
		mlog.Warn("s3: create_record: %v", err)
		return err
	}
	return nil
}

func (m *Manager) RemoveRecord(key string) error {
	if key == "" {
		return fmt.Errorf("s3: remove_record: key is missing")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		return errNoHandle
	}

	mlog.Debug("s3: remove_record: deleting object %q", key)

	if err := m.client.DeleteObject(context.Background(), key); err != nil {
		mlog.Warn("s3: remove_record: %v", err)
		return err
	}
	return nil
}

func isNotFound(err error) bool {
	return strings.Contains(err.Error(), "NoSuchKey") || strings.Contains(err.Error(), "NotFound") || strings.Contains(err.Error(), "404")
}
