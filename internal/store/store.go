// Package store persists the domain state as one delimited-text table per
// record set. Every mutation is a whole-table rewrite: read the current
// snapshot, compute the new tables, write them to temp files, then rename
// into place so a reader never observes a truncated table.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"machine-loan-backend/internal/apperr"
	"machine-loan-backend/internal/model"
)

// Table identifies one of the persisted record sets. Values combine as a
// bitmask when an update touches more than one table.
type Table int

const (
	TableMachines Table = 1 << iota
	TableLoans
	TableSupervisors
	TableAccounts
)

// Snapshot is a full copy of the domain state. Service operations receive a
// snapshot, mutate it, and report which tables changed.
type Snapshot struct {
	Machines    []model.Machine
	Loans       []model.Loan
	Supervisors []model.Supervisor
	Accounts    []model.Account
}

// Store owns the table files and an in-memory copy of their contents.
// A single RWMutex covers all four tables: the cross-table invariants
// (machine status vs. active loans) require mutations to be serialized.
type Store struct {
	mu     sync.RWMutex
	dir    string
	logger *zap.Logger
	snap   Snapshot
}

// Open ensures the data directory and table files exist (creating empty
// tables with their header rows when missing), loads everything into
// memory, and returns the store.
func Open(dir string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperr.NewDatabase("create data directory", err)
	}

	s := &Store{dir: dir, logger: logger}
	for _, t := range allTables {
		path := s.path(t)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := s.writeFile(path, t, s.snap); err != nil {
				return nil, err
			}
			logger.Info("created empty table", zap.String("file", filepath.Base(path)))
		} else if err != nil {
			return nil, apperr.NewDatabase("stat table file", err)
		}
	}

	if err := s.loadAll(); err != nil {
		return nil, err
	}
	return s, nil
}

// View returns a deep copy of the current state.
func (s *Store) View() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.clone()
}

// Machines returns a copy of the machines table.
func (s *Store) Machines() []model.Machine { return s.View().Machines }

// Loans returns a copy of the loans table.
func (s *Store) Loans() []model.Loan { return s.View().Loans }

// Supervisors returns a copy of the supervisors table.
func (s *Store) Supervisors() []model.Supervisor { return s.View().Supervisors }

// Accounts returns a copy of the accounts table.
func (s *Store) Accounts() []model.Account { return s.View().Accounts }

// Update runs fn against a copy of the current state under the write lock.
// fn returns the set of tables it changed; those tables are persisted as one
// batch (every temp file is written and synced before the first rename) and
// the in-memory state is swapped only after all renames succeed. If fn
// returns an error nothing is written and the error is passed through.
func (s *Store) Update(fn func(sn *Snapshot) (Table, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.snap.clone()
	changed, err := fn(&next)
	if err != nil {
		return err
	}
	if changed == 0 {
		return nil
	}

	type pending struct {
		tmp, final string
	}
	var commits []pending
	cleanup := func() {
		for _, p := range commits {
			os.Remove(p.tmp)
		}
	}

	for _, t := range allTables {
		if changed&t == 0 {
			continue
		}
		final := s.path(t)
		tmp, err := s.writeTemp(t, next)
		if err != nil {
			cleanup()
			return err
		}
		commits = append(commits, pending{tmp: tmp, final: final})
	}

	for i, p := range commits {
		if err := os.Rename(p.tmp, p.final); err != nil {
			// Temps after this one are still pending; drop them. Tables
			// renamed before this point are already durable.
			for _, rest := range commits[i:] {
				os.Remove(rest.tmp)
			}
			return apperr.NewDatabase("commit table "+filepath.Base(p.final), err)
		}
	}

	s.snap = next
	return nil
}

func (s *Store) path(t Table) string {
	return filepath.Join(s.dir, fileNames[t])
}

func (s *Store) loadAll() error {
	var snap Snapshot
	for _, t := range allTables {
		if err := readTable(s.path(t), t, &snap); err != nil {
			return err
		}
	}
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	return nil
}

// writeTemp writes table t from sn into a temp file in the data directory
// and returns its path. The file is synced before close so a later rename
// publishes complete contents.
func (s *Store) writeTemp(t Table, sn Snapshot) (string, error) {
	f, err := os.CreateTemp(s.dir, fileNames[t]+".tmp-*")
	if err != nil {
		return "", apperr.NewDatabase("create temp table file", err)
	}
	tmp := f.Name()
	if err := encodeTable(f, t, sn); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", apperr.NewDatabase("write table "+fileNames[t], err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", apperr.NewDatabase("sync table "+fileNames[t], err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", apperr.NewDatabase("close table "+fileNames[t], err)
	}
	return tmp, nil
}

// writeFile writes a table directly to path (used only for bootstrapping
// empty tables before any reader exists).
func (s *Store) writeFile(path string, t Table, sn Snapshot) error {
	tmp, err := s.writeTemp(t, sn)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return apperr.NewDatabase("create table "+filepath.Base(path), err)
	}
	return nil
}

func (sn Snapshot) clone() Snapshot {
	out := Snapshot{
		Machines:    make([]model.Machine, len(sn.Machines)),
		Loans:       make([]model.Loan, len(sn.Loans)),
		Supervisors: make([]model.Supervisor, len(sn.Supervisors)),
		Accounts:    make([]model.Account, len(sn.Accounts)),
	}
	copy(out.Machines, sn.Machines)
	copy(out.Loans, sn.Loans)
	copy(out.Supervisors, sn.Supervisors)
	copy(out.Accounts, sn.Accounts)
	return out
}

// String names the table for logs and errors.
func (t Table) String() string {
	if name, ok := fileNames[t]; ok {
		return name
	}
	return fmt.Sprintf("table(%d)", int(t))
}
