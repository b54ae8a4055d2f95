// Package app assembles the persistence layer shared by the server and the CLI.
package app

import (
	"fmt"
	"time"

	"github.com/fekuna/omnipos-ledger-service/config"
	"github.com/fekuna/omnipos-ledger-service/internal/backup"
	backupRepoPkg "github.com/fekuna/omnipos-ledger-service/internal/backup/repository"
	"github.com/fekuna/omnipos-ledger-service/internal/bill"
	billRepoPkg "github.com/fekuna/omnipos-ledger-service/internal/bill/repository"
	"github.com/fekuna/omnipos-ledger-service/internal/product"
	prodRepoPkg "github.com/fekuna/omnipos-ledger-service/internal/product/repository"
	"github.com/fekuna/omnipos-ledger-service/internal/shop"
	shopRepoPkg "github.com/fekuna/omnipos-ledger-service/internal/shop/repository"
	"github.com/fekuna/omnipos-ledger-service/pkg/logger"
	"github.com/fekuna/omnipos-ledger-service/pkg/postgres"
	"go.uber.org/zap"
)

// Store bundles the repositories of one backend.
type Store struct {
	Bills    bill.Repository
	Products product.Repository
	Shops    shop.Repository
	Backup   backup.Repository

	close func() error
}

func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenStore connects the backend named by cfg.Store.Driver.
func OpenStore(cfg *config.Config, log logger.ZapLogger) (*Store, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		log.Warn("Using in-memory store, data is lost on exit")
		return NewMemoryStore(), nil
	case config.DriverPostgres, "":
		db, err := postgres.NewPostgres(&postgres.Config{
			Host:            cfg.Postgres.Host,
			Port:            cfg.Postgres.Port,
			User:            cfg.Postgres.User,
			Password:        cfg.Postgres.Password,
			DBName:          cfg.Postgres.DBName,
			SSLMode:         cfg.Postgres.SSLMode,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
			ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
		})
		if err != nil {
			return nil, err
		}
		log.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))
		return &Store{
			Bills:    billRepoPkg.NewPGRepository(db),
			Products: prodRepoPkg.NewPGRepository(db),
			Shops:    shopRepoPkg.NewPGRepository(db),
			Backup:   backupRepoPkg.NewPGRepository(db),
			close:    db.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func NewMemoryStore() *Store {
	bills := billRepoPkg.NewMemoryRepository()
	products := prodRepoPkg.NewMemoryRepository()
	shops := shopRepoPkg.NewMemoryRepository()
	return &Store{
		Bills:    bills,
		Products: products,
		Shops:    shops,
		Backup:   backupRepoPkg.NewMemoryRepository(bills, products, shops),
	}
}
