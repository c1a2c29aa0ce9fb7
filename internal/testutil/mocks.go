package testutil

import (
	"ess/internal/providers"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.Logs {
		if l.Level == level {
			n++
		}
	}
	return n
}

// MockMetrics implements providers.MetricsProviderInterface.
type MockMetrics struct {
	mu           sync.Mutex
	Requests     map[string]int
	RemoteCalls  map[string]int
	StoreOps     map[string]int
	SessionState string
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		Requests:    make(map[string]int),
		RemoteCalls: make(map[string]int),
		StoreOps:    make(map[string]int),
	}
}

func (m *MockMetrics) IncRequestsTotal(endpoint string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests[endpoint]++
}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncRemoteCalls(resource string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RemoteCalls[resource]++
}
func (m *MockMetrics) ObserveRemoteDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncStoreOps(op string, result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StoreOps[op+":"+result]++
}
func (m *MockMetrics) SetSessionState(state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SessionState = state
}

func (m *MockMetrics) Remote(resource string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.RemoteCalls[resource]
}

func (m *MockMetrics) Store(op, result string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.StoreOps[op+":"+result]
}

func (m *MockMetrics) State() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.SessionState
}

// MockStore implements storage.Store over a map. Setting Err makes every call
// fail with it; DeleteErr fails only Delete.
type MockStore struct {
	mu        sync.Mutex
	Data      map[string]string
	Err       error
	DeleteErr error
}

func NewMockStore() *MockStore {
	return &MockStore{Data: make(map[string]string)}
}

func (m *MockStore) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", false, m.Err
	}
	val, ok := m.Data[key]
	return val, ok, nil
}

func (m *MockStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Data[key] = value
	return nil
}

func (m *MockStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.Data, key)
	return nil
}

// FailDeletes sets DeleteErr under the store lock.
func (m *MockStore) FailDeletes(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteErr = err
}

// Value reads a key under the store lock.
func (m *MockStore) Value(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Data[key]
}

func (m *MockStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Data[key]
	return ok
}

// MockCodec implements storage.SnapshotCodec. Without hooks it passes bytes
// through unchanged.
type MockCodec struct {
	EncodeFn func([]byte) ([]byte, error)
	DecodeFn func([]byte) ([]byte, error)
	Closed   bool
}

func (m *MockCodec) Encode(val []byte) ([]byte, error) {
	if m.EncodeFn != nil {
		return m.EncodeFn(val)
	}
	return append([]byte(nil), val...), nil
}

func (m *MockCodec) Decode(val []byte) ([]byte, error) {
	if m.DecodeFn != nil {
		return m.DecodeFn(val)
	}
	return append([]byte(nil), val...), nil
}

func (m *MockCodec) Close() { m.Closed = true }
