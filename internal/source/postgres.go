package source

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kapu/member-directory-go/internal/domain"
	"github.com/kapu/member-directory-go/pkg/errors"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// PostgresSource serves directory rows from a Postgres mirror of the portal
// lists. Row payloads are stored as jsonb with the same raw field names the
// REST API returns, so the mapper treats both sources identically.
type PostgresSource struct {
	db     *sql.DB
	logger *zap.Logger
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

func NewPostgresSource(cfg PostgresConfig, logger *zap.Logger) (*PostgresSource, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	logger.Info("PostgreSQL connected",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
	)

	return &PostgresSource{
		db:     db,
		logger: logger,
	}, nil
}

func (ps *PostgresSource) Lists(ctx context.Context) ([]domain.ListInfo, error) {
	rows, err := ps.db.QueryContext(ctx,
		`SELECT id, title, base_template, hidden FROM directory_lists ORDER BY title`)
	if err != nil {
		return nil, errors.NewSourceError("failed to query list catalog", "postgres", 500, err)
	}
	defer rows.Close()

	var lists []domain.ListInfo
	for rows.Next() {
		var info domain.ListInfo
		if err := rows.Scan(&info.ID, &info.Title, &info.BaseTemplate, &info.Hidden); err != nil {
			return nil, errors.NewSourceError("failed to scan list row", "postgres", 500, err)
		}
		if info.Hidden {
			continue
		}
		lists = append(lists, info)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewSourceError("list catalog iteration failed", "postgres", 500, err)
	}
	return lists, nil
}

// Items ignores the field projection: jsonb payloads already hold only the
// mirrored raw fields, and the mapper skips anything it does not know.
func (ps *PostgresSource) Items(ctx context.Context, listID string, _ []string, top int) ([]map[string]any, error) {
	if listID == "" {
		return []map[string]any{}, nil
	}

	rows, err := ps.db.QueryContext(ctx,
		`SELECT payload FROM directory_items WHERE list_id = $1 ORDER BY item_id LIMIT $2`,
		listID, top)
	if err != nil {
		return nil, errors.NewSourceError("failed to query items", "postgres", 500, err)
	}
	defer rows.Close()

	var result []map[string]any
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, errors.NewSourceError("failed to scan item row", "postgres", 500, err)
		}

		var row map[string]any
		if err := json.Unmarshal(payload, &row); err != nil {
			ps.logger.Warn("Skipping undecodable item payload",
				zap.String("list_id", listID),
				zap.Error(err),
			)
			continue
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewSourceError("item iteration failed", "postgres", 500, err)
	}
	return result, nil
}

func (ps *PostgresSource) Close() error {
	if ps.db != nil {
		return ps.db.Close()
	}
	return nil
}

func (ps *PostgresSource) Ping(ctx context.Context) error {
	return ps.db.PingContext(ctx)
}
