package upstream

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/akosarev/storefront/internal/models"
)

type ProductRecord struct {
	ID     string         `gorm:"primaryKey"        json:"id"`
	Name   string         `gorm:"not null"          json:"name"`
	Price  float64        `gorm:"not null"          json:"price"`
	Images []models.Image `gorm:"serializer:json"   json:"images"`
}

func (ProductRecord) TableName() string { return "products" }

func (p *ProductRecord) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

type CartLineRecord struct {
	ID        string `gorm:"primaryKey"                 json:"id"`
	UserID    string `gorm:"index;not null"             json:"user_id"`
	ProductID string `gorm:"not null"                   json:"product_id"`
	Quantity  int    `gorm:"default:1;check:quantity>0" json:"quantity"`
}

func (CartLineRecord) TableName() string { return "cart_lines" }

func (l *CartLineRecord) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

func configurePool(sqlDB *sql.DB) {
	const (
		maxOpenConns    = 20
		maxIdleConns    = 10
		connMaxLifetime = 30 * time.Minute
		connMaxIdleTime = 5 * time.Minute
	)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)
}

// Open connects to postgres when a DSN is given, otherwise to a private
// in-memory sqlite database, and migrates the cart schema.
func Open(ctx context.Context, dsn string) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	if dsn != "" {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			PrepareStmt: true,
			NowFunc:     func() time.Time { return time.Now().UTC() },
		})
	} else {
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap sql.DB: %w", err)
	}
	if dsn != "" {
		configurePool(sqlDB)

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := sqlDB.PingContext(pingCtx); err != nil {
			return nil, fmt.Errorf("ping database: %w", err)
		}
	} else {
		// one connection keeps every session on the same in-memory database
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&ProductRecord{}, &CartLineRecord{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}
