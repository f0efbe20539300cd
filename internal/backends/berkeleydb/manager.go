// Package berkeleydb implements a key-value database engine over
// go.etcd.io/bbolt, standing in for the original's libdb-based
// berkeleydb backend behind the same flat key/value contract.
package berkeleydb

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"go.etcd.io/bbolt"

	"github.com/mdbfs/mdbfs/internal/dbmanager/kv"
	"github.com/mdbfs/mdbfs/internal/mlog"
)

var errNoHandle = errors.New("berkeleydb: no database is open")

var bucketName = []byte("records")

// Manager implements kv.Manager against a single bbolt bucket, one key
// per record, mirroring the original's single-namespace key/value
// layout.
type Manager struct {
	mu   sync.Mutex
	db   *bbolt.DB
	name string
}

func New() *Manager {
	return &Manager{}
}

var _ kv.Manager = (*Manager)(nil)

func (m *Manager) Open(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db != nil {
		mlog.Warn("berkeleydb: open: it looks like a database is already loaded")
		mlog.Warn("berkeleydb: open: dropping the (previous?) session")
		m.db.Close()
		m.db = nil
	}

	mlog.Info("berkeleydb: opening database from %s", path)

	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return fmt.Errorf("berkeleydb: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return fmt.Errorf("berkeleydb: open %s: %w", path, err)
	}

	m.db = db
	m.name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return nil
}

func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db == nil {
		mlog.Warn("berkeleydb: close: attempting to close a closed connection")
		return
	}
	mlog.Info("berkeleydb: closing database")
	m.db.Close()
	m.db = nil
}

func (m *Manager) GetDatabaseName() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return "", errNoHandle
	}
	return m.name, nil
}

func (m *Manager) GetRecordKeys() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return nil, errNoHandle
	}

	mlog.Debug("berkeleydb: listing record keys")

	keys := []string{}
	err := m.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketName).Cursor()
		for key, _ := c.First(); key != nil; key, _ = c.Next() {
			keys = append(keys, string(key))
		}
		return nil
	})
	if err != nil {
		mlog.Warn("berkeleydb: get_record_keys: %v", err)
		return nil, err
	}
	return keys, nil
}

func (m *Manager) GetRecordValue(key string) ([]byte, error) {
	if key == "" {
		mlog.Warn("berkeleydb: get_record_value: key is missing")
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return nil, errNoHandle
	}

	mlog.Debug("berkeleydb: get_record_value: querying value for key %q", key)

	var value []byte
	err := m.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(key))
		if v == nil {
			return nil
		}
		value = make([]byte, len(v))
		copy(value, v)
		return nil
	})
	if err != nil {
		mlog.Warn("berkeleydb: get_record_value: %v", err)
		return nil, err
	}
	return value, nil
}

func (m *Manager) SetRecordValue(key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("berkeleydb: set_record_value: key is missing")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return errNoHandle
	}

	mlog.Debug("berkeleydb: set_record_value: updating value for key %q", key)

	err := m.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), data)
	})
	if err != nil {
		mlog.Warn("berkeleydb: set_record_value: %v", err)
		return err
	}
	return nil
}

// RenameRecord performs get, delete, put as three separate operations,
// matching the original berkeleydb backend: if the put fails after the
// delete, the record is lost, and no rollback is attempted.
func (m *Manager) RenameRecord(oldKey, newKey string) error {
	if oldKey == "" || newKey == "" {
		return fmt.Errorf("berkeleydb: rename_record: missing argument")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return errNoHandle
	}

	mlog.Debug("berkeleydb: rename_record: renaming key %q to %q", oldKey, newKey)

	var value []byte
	err := m.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(oldKey))
		if v == nil {
			return fmt.Errorf("berkeleydb: rename_record: no such key %q", oldKey)
		}
		value = make([]byte, len(v))
		copy(value, v)
		return nil
	})
	if err != nil {
		mlog.Warn("berkeleydb: rename_record: %v", err)
		return err
	}

	err = m.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(oldKey))
	})
	if err != nil {
		mlog.Warn("berkeleydb: rename_record: delete failed, key %q is now orphaned: %v", oldKey, err)
		return err
	}

	err = m.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(newKey), value)
	})
	if err != nil {
		mlog.Warn("berkeleydb: rename_record: put failed, value for %q is lost: %v", oldKey, err)
		return err
	}
	return nil
}

func (m *Manager) CreateRecord(key string) error {
	if key == "" {
		return fmt.Errorf("berkeleydb: create_record: key is missing")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return errNoHandle
	}

	mlog.Debug("berkeleydb: create_record: creating key %q", key)

	err := m.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), []byte{})
	})
	if err != nil {
		mlog.Warn("berkeleydb: create_record: %v", err)
		return err
	}
	return nil
}

func (m *Manager) RemoveRecord(key string) error {
	if key == "" {
		return fmt.Errorf("berkeleydb: remove_record: key is missing")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return errNoHandle
	}

	mlog.Debug("berkeleydb: remove_record: deleting key %q", key)

	err := m.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(key))
	})
	if err != nil {
		mlog.Warn("berkeleydb: remove_record: %v", err)
		return err
	}
	return nil
}
