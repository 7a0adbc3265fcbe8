// Copyright 2024 The Inkpad Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package registry

import (
	"context"
	"sort"
	"sync"

	"github.com/inkpad-io/inkpad/types"
)

// NewInmemStore returns an empty map-backed Store for tests and embedded
// hosts that do not need persistence.
func NewInmemStore() Store {
	return &inmemStore{records: map[string]Record{}}
}

type inmemStore struct {
	mtx     sync.RWMutex
	records map[string]Record
}

func (s *inmemStore) Put(_ context.Context, rec Record) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.records[rec.ID] = rec
	return nil
}

func (s *inmemStore) Get(_ context.Context, id string) (Record, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return Record{}, types.NewError(types.NotFoundErr, "registry record %v not found", id)
	}
	return rec, nil
}

func (s *inmemStore) Delete(_ context.Context, id string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	delete(s.records, id)
	return nil
}

func (s *inmemStore) ListActive(_ context.Context) ([]Record, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	var result []Record
	for _, rec := range s.records {
		if rec.LastKnownState == types.StateActive {
			result = append(result, rec)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *inmemStore) Close() error {
	return nil
}
