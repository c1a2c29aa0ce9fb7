package storage

import (
	"ess/internal/providers"
	"ess/internal/structures"
	"fmt"
)

// NewStoreProvider builds the configured store driver wrapped with metrics.
func NewStoreProvider(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) (Store, func(), error) {
	switch conf.Store.Driver {
	case "memory":
		logger.Infof(providers.TypeApp, "Credential store: memory (%dMB)", max(conf.Store.MemorySize, minMemorySizeMB))
		return NewMetricsStore(NewMemoryStore(conf.Store.MemorySize), metrics), func() {}, nil
	case "file", "":
		secret := []byte(conf.Store.Secret)
		if len(secret) == 0 {
			var err error
			secret, err = LoadOrCreateSecret(conf.Store.FilePath + ".key")
			if err != nil {
				return nil, nil, err
			}
		}
		cipher, err := NewCipher(secret)
		if err != nil {
			return nil, nil, err
		}
		codec, err := NewSnapshotCodec()
		if err != nil {
			return nil, nil, err
		}
		fs, err := NewFileStore(conf.Store.FilePath, codec, cipher, logger)
		if err != nil {
			codec.Close()
			return nil, nil, err
		}
		logger.Infof(providers.TypeApp, "Credential store: file %s", conf.Store.FilePath)
		return NewMetricsStore(fs, metrics), fs.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", conf.Store.Driver)
	}
}
