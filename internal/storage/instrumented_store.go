package storage

import "ess/internal/providers"

// MetricsStore wraps a Store and counts operations by kind and result.
type MetricsStore struct {
	inner   Store
	metrics providers.MetricsProviderInterface
}

func NewMetricsStore(inner Store, metrics providers.MetricsProviderInterface) *MetricsStore {
	return &MetricsStore{inner: inner, metrics: metrics}
}

func (s *MetricsStore) Get(key string) (string, bool, error) {
	val, ok, err := s.inner.Get(key)
	switch {
	case err != nil:
		s.metrics.IncStoreOps("get", "error")
	case ok:
		s.metrics.IncStoreOps("get", "hit")
	default:
		s.metrics.IncStoreOps("get", "miss")
	}
	return val, ok, err
}

func (s *MetricsStore) Set(key, value string) error {
	err := s.inner.Set(key, value)
	s.metrics.IncStoreOps("set", result(err))
	return err
}

func (s *MetricsStore) Delete(key string) error {
	err := s.inner.Delete(key)
	s.metrics.IncStoreOps("delete", result(err))
	return err
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
