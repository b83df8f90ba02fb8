package history

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

func NewDatabase(ctx context.Context, databaseType, connectionString string) (store Store, err error) {
	switch databaseType {
	case "", "sqlite":
		store, err = NewSQLiteStore(connectionString)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", databaseType)
	}

	logrus.WithField("type", databaseType).Debug("ensuring history schema exists")
	if err = store.CreateSchema(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return store, nil
}
