// Package session implements the session/transaction manager described in
// spec §4.9: session CRUD with sliding expiration, serializable-isolation
// transactions with snapshot-based rollback, best-effort operation
// recording, and a periodic expiry reaper.
package session

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/nmxmxh/desktop-automation-service/api/uiautomationpb"
	"github.com/nmxmxh/desktop-automation-service/pkg/apierror"
	"google.golang.org/grpc/codes"
)

// DefaultExpiry is the sliding session lifetime, refreshed by Get (§4.9).
const DefaultExpiry = 1 * time.Hour

// ReapInterval is the cron period for the expiry sweep.
const ReapInterval = "@every 60s"

// record is the manager's internal per-session bookkeeping; the wire
// *uiautomationpb.Session only carries the fields clients see.
type record struct {
	session      *uiautomationpb.Session
	transaction  *uiautomationpb.Transaction
	history      []uiautomationpb.OperationRecord
	snapshots    []uiautomationpb.Snapshot
	applications map[string]struct{}
	observations map[string]struct{}
}

// Manager owns the live session set.
type Manager struct {
	mu      sync.Mutex
	entries map[string]*record
	log     *zap.Logger
	cronJob *cron.Cron
}

func New(log *zap.Logger) *Manager {
	m := &Manager{entries: make(map[string]*record), log: log}
	c := cron.New()
	if _, err := c.AddFunc(ReapInterval, m.reap); err != nil && log != nil {
		log.Error("failed to schedule session reaper", zap.Error(err))
	}
	c.Start()
	m.cronJob = c
	return m
}

// Stop halts the expiry reaper.
func (m *Manager) Stop() {
	if m.cronJob != nil {
		m.cronJob.Stop()
	}
}

// Create registers a new active session with the default expiry.
func (m *Manager) Create(metadata map[string]string) *uiautomationpb.Session {
	now := time.Now()
	s := &uiautomationpb.Session{
		Name:       "sessions/" + uuid.NewString(),
		State:      uiautomationpb.SessionActive,
		CreateTime: now,
		LastAccessTime: now,
		ExpireTime: now.Add(DefaultExpiry),
		Metadata:   metadata,
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[s.Name] = &record{
		session:      s,
		applications: make(map[string]struct{}),
		observations: make(map[string]struct{}),
	}
	return s
}

// Get returns the session, refreshing its sliding expiry and last-access
// time. A session already past its expiry is treated as not-found.
func (m *Manager) Get(name string) (*uiautomationpb.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.entries[name]
	if !ok || rec.session.State == uiautomationpb.SessionExpired {
		return nil, notFound(name)
	}
	now := time.Now()
	if rec.session.ExpireTime.Before(now) {
		rec.session.State = uiautomationpb.SessionExpired
		return nil, notFound(name)
	}
	rec.session.LastAccessTime = now
	rec.session.ExpireTime = now.Add(DefaultExpiry)
	return rec.session, nil
}

// List returns sessions with name strictly greater than pageToken, keyset
// paginated, sorted by name ascending.
func (m *Manager) List(pageSize int, pageToken string) ([]*uiautomationpb.Session, string, error) {
	m.mu.Lock()
	names := make([]string, 0, len(m.entries))
	for n := range m.entries {
		names = append(names, n)
	}
	sort.Strings(names)

	var all []*uiautomationpb.Session
	for _, n := range names {
		if pageToken != "" && n <= pageToken {
			continue
		}
		all = append(all, m.entries[n].session)
	}
	m.mu.Unlock()

	if pageSize <= 0 {
		pageSize = 50
	}
	if len(all) > pageSize {
		page := all[:pageSize]
		return page, page[len(page)-1].Name, nil
	}
	return all, "", nil
}

// Delete removes a session unconditionally.
func (m *Manager) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[name]; !ok {
		return notFound(name)
	}
	delete(m.entries, name)
	return nil
}

// BeginTransaction starts a transaction on an active, non-transacting
// session. Serializable isolation also records a rollback snapshot.
func (m *Manager) BeginTransaction(sessionName string, isolation uiautomationpb.IsolationLevel, _ time.Duration) (*uiautomationpb.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.activeLocked(sessionName)
	if err != nil {
		return nil, err
	}
	if rec.session.ActiveTransactionID != "" {
		return nil, apierror.New(codes.FailedPrecondition, apierror.ReasonSessionNotActive,
			"session already has an active transaction", map[string]string{"session": sessionName})
	}
	txID := uuid.NewString()
	tx := &uiautomationpb.Transaction{
		ID:                txID,
		SessionName:       sessionName,
		Isolation:         isolation,
		OperationStartIdx: len(rec.history),
		State:             uiautomationpb.TransactionActive,
	}
	rec.transaction = tx
	rec.session.ActiveTransactionID = txID
	rec.session.State = uiautomationpb.SessionInTransaction
	if isolation == uiautomationpb.Serializable {
		rec.snapshots = append(rec.snapshots, uiautomationpb.Snapshot{
			RevisionID:     "snapshot-" + txID,
			Timestamp:      time.Now(),
			OperationIndex: len(rec.history),
		})
	}
	return tx, nil
}

// CommitTransaction finalizes the named transaction, returning it with
// state=committed and the final operationsCount.
func (m *Manager) CommitTransaction(sessionName, txID string) (*uiautomationpb.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, tx, err := m.activeTxLocked(sessionName, txID)
	if err != nil {
		return nil, err
	}
	tx.OperationsCount = len(rec.history) - tx.OperationStartIdx
	tx.State = uiautomationpb.TransactionCommitted
	rec.session.ActiveTransactionID = ""
	rec.session.State = uiautomationpb.SessionActive
	rec.transaction = nil
	return tx, nil
}

// RollbackTransaction truncates history to the referenced snapshot's
// operationIndex and marks the transaction rolled back.
func (m *Manager) RollbackTransaction(sessionName, txID, revisionID string) (*uiautomationpb.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, tx, err := m.activeTxLocked(sessionName, txID)
	if err != nil {
		return nil, err
	}
	var snap *uiautomationpb.Snapshot
	for i := range rec.snapshots {
		if rec.snapshots[i].RevisionID == revisionID {
			snap = &rec.snapshots[i]
			break
		}
	}
	if snap == nil {
		return nil, apierror.New(codes.InvalidArgument, apierror.ReasonUnknownRevision,
			"unknown snapshot revision", map[string]string{"revisionId": revisionID})
	}
	tx.OperationsCount = len(rec.history) - tx.OperationStartIdx
	rec.history = rec.history[:snap.OperationIndex]
	tx.State = uiautomationpb.TransactionRolledBack
	rec.session.ActiveTransactionID = ""
	rec.session.State = uiautomationpb.SessionActive
	rec.transaction = nil
	return tx, nil
}

func (m *Manager) activeLocked(sessionName string) (*record, error) {
	rec, ok := m.entries[sessionName]
	if !ok || rec.session.State == uiautomationpb.SessionExpired {
		return nil, notFound(sessionName)
	}
	return rec, nil
}

func (m *Manager) activeTxLocked(sessionName, txID string) (*record, *uiautomationpb.Transaction, error) {
	rec, err := m.activeLocked(sessionName)
	if err != nil {
		return nil, nil, err
	}
	if rec.transaction == nil || rec.transaction.ID != txID {
		return nil, nil, apierror.New(codes.FailedPrecondition, apierror.ReasonNoActiveTransaction,
			"no matching active transaction", map[string]string{"session": sessionName, "transactionId": txID})
	}
	return rec, rec.transaction, nil
}

// RecordOperation appends a history entry for sessionName. Lookup failures
// are ignored: recording is best-effort and must never fail the caller's
// primary operation.
func (m *Manager) RecordOperation(sessionName, opType, resource string, success bool, opErr string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.entries[sessionName]
	if !ok || rec.session.State == uiautomationpb.SessionExpired {
		return
	}
	var txID string
	if rec.transaction != nil {
		txID = rec.transaction.ID
	}
	rec.history = append(rec.history, uiautomationpb.OperationRecord{
		Type:          opType,
		Resource:      resource,
		Success:       success,
		Error:         opErr,
		OperationTime: time.Now(),
		TransactionID: txID,
	})
	switch {
	case strings.HasPrefix(resource, "observations/") || strings.Contains(resource, "/observations/"):
		rec.observations[resource] = struct{}{}
	case strings.HasPrefix(resource, "applications/"):
		rec.applications[resource] = struct{}{}
	}
}

// GetSessionSnapshot returns the session plus its tracked applications,
// tracked observations, and ordered history.
func (m *Manager) GetSessionSnapshot(sessionName string) (*uiautomationpb.SessionSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, err := m.activeLocked(sessionName)
	if err != nil {
		return nil, err
	}
	apps := make([]string, 0, len(rec.applications))
	for a := range rec.applications {
		apps = append(apps, a)
	}
	sort.Strings(apps)
	obs := make([]string, 0, len(rec.observations))
	for o := range rec.observations {
		obs = append(obs, o)
	}
	sort.Strings(obs)
	history := make([]uiautomationpb.OperationRecord, len(rec.history))
	copy(history, rec.history)
	return &uiautomationpb.SessionSnapshot{
		Session:      rec.session,
		Applications: apps,
		Observations: obs,
		History:      history,
	}, nil
}

func (m *Manager) reap() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for name, rec := range m.entries {
		if rec.session.ExpireTime.Before(now) {
			delete(m.entries, name)
		}
	}
}

func notFound(name string) error {
	return apierror.New(codes.NotFound, apierror.ReasonSessionNotFound,
		"session not found", map[string]string{"name": name})
}
