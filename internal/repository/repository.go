package repository

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	model "reuse-market/internal/models"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MarketDB defines the storage interface for the marketplace.
type MarketDB interface {
	CreateUser(user model.User) error
	GetUser(userID string) (model.User, error)
	AdjustKarma(userID string, delta float64) error

	CreateItem(item model.Item) error
	GetItem(itemID string) (model.Item, error)
	UpdateItem(item model.Item) error
	AllItems() ([]model.Item, error)
	AllItemIDs() ([]string, error)
	SearchItems(name string, offset, limit int) ([]model.Item, error)
	CountItems(name string) (int, error)

	RecordBidForItem(bid model.Bid) error
	DeleteBid(itemID, bidderID string) error
	GetBid(bidID string) (model.Bid, error)
	GetBidsByItem(itemID string) ([]model.Bid, error)
	AcceptBid(bidID, transactionID string) (model.Bid, error)
	AcceptedBidsBySeller(sellerID string) ([]model.Bid, error)
	AcceptedBidsByBidder(bidderID string) ([]model.Bid, error)

	CreateTransaction(txn model.Transaction) error
	RecordReview(review model.Review, karmaDelta float64) error
}

// SQLiteRepo is the sqlite-backed implementation of MarketDB.
type SQLiteRepo struct {
	db *sql.DB
}

// Initialize opens the sqlite database and verifies the connection.
func Initialize(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Migrate applies the embedded schema migrations.
func Migrate(db *sql.DB) error {
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// NewSQLiteRepo wraps an initialized database handle.
func NewSQLiteRepo(db *sql.DB) *SQLiteRepo {
	return &SQLiteRepo{db: db}
}
