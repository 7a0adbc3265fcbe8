// Copyright 2024 The Inkpad Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package registry

import (
	"context"
	"encoding/json"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/inkpad-io/inkpad/types"
)

const recordPrefix = "plugin/"

// DiskStore is a badger-backed Store. Records are JSON-encoded under a
// fixed key prefix so they can be scanned without touching other keyspaces
// a host may colocate in the same database directory.
type DiskStore struct {
	db *badger.DB
}

// NewDiskStore opens (or creates) the store in dir.
func NewDiskStore(dir string) (*DiskStore, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}
	return &DiskStore{db: db}, nil
}

// Put writes rec, replacing any existing record with the same id.
func (s *DiskStore) Put(_ context.Context, rec Record) error {
	bs, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return wrapError(s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(rec.ID), bs)
	}))
}

// Get returns the record for id.
func (s *DiskStore) Get(_ context.Context, id string) (Record, error) {
	var rec Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(bs []byte) error {
			return json.Unmarshal(bs, &rec)
		})
	})
	if err == badger.ErrKeyNotFound {
		return Record{}, types.NewError(types.NotFoundErr, "registry record %v not found", id)
	}
	return rec, wrapError(err)
}

// Delete removes the record for id. Deleting a missing record is not an
// error.
func (s *DiskStore) Delete(_ context.Context, id string) error {
	return wrapError(s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(recordKey(id))
	}))
}

// ListActive returns every record whose last known state is active, in key
// order.
func (s *DiskStore) ListActive(_ context.Context) ([]Record, error) {
	var result []Record
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(recordPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec Record
			err := it.Item().Value(func(bs []byte) error {
				return json.Unmarshal(bs, &rec)
			})
			if err != nil {
				return err
			}
			if rec.LastKnownState == types.StateActive {
				result = append(result, rec)
			}
		}
		return nil
	})
	return result, wrapError(err)
}

// Close closes the underlying database.
func (s *DiskStore) Close() error {
	return wrapError(s.db.Close())
}

func recordKey(id string) []byte {
	return []byte(recordPrefix + id)
}

func wrapError(err error) error {
	if err == nil {
		return nil
	}
	return types.WrapError(types.InternalErr, err)
}
