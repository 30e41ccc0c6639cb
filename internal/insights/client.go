package insights

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// Client wraps a ClickHouse connection for listing view analytics
type Client struct {
	conn driver.Conn
}

// ClientConfig holds ClickHouse connection parameters
type ClientConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// NewClient opens a ClickHouse connection for the listing_views table
func NewClient(cfg ClientConfig) (*Client, error) {
	options := &clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:      5 * time.Second,
		MaxOpenConns:     3,
		MaxIdleConns:     2,
		ConnMaxLifetime:  5 * time.Minute,
		ConnOpenStrategy: clickhouse.ConnOpenInOrder,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	}

	// TLS for non-private networks
	if !isPrivateHost(cfg.Host) {
		options.TLS = &tls.Config{InsecureSkipVerify: true}
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("insights: failed to open ClickHouse: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("insights: failed to ping ClickHouse: %w", err)
	}

	return &Client{conn: conn}, nil
}

func isPrivateHost(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "host.docker.internal" ||
		strings.HasPrefix(host, "10.") ||
		strings.HasPrefix(host, "172.") ||
		strings.HasPrefix(host, "192.168.")
}

// PrepareBatch starts a batched insert
func (c *Client) PrepareBatch(ctx context.Context, query string) (driver.Batch, error) {
	return c.conn.PrepareBatch(ctx, query)
}

// QueryRow executes a query returning a single row
func (c *Client) QueryRow(ctx context.Context, query string, args ...interface{}) driver.Row {
	return c.conn.QueryRow(ctx, query, args...)
}

// Query executes a SELECT and returns rows
func (c *Client) Query(ctx context.Context, query string, args ...interface{}) (driver.Rows, error) {
	return c.conn.Query(ctx, query, args...)
}

// Exec runs a statement without results, such as DDL
func (c *Client) Exec(ctx context.Context, query string, args ...interface{}) error {
	return c.conn.Exec(ctx, query, args...)
}

// EnsureSchema creates the listing_views table when missing.
func (c *Client) EnsureSchema(ctx context.Context) error {
	return c.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS listing_views (
			listing_id UInt64,
			viewer_id  UInt64,
			ip_hash    String,
			viewed_at  DateTime DEFAULT now()
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(viewed_at)
		ORDER BY (listing_id, viewed_at)
		TTL viewed_at + INTERVAL 180 DAY
	`)
}

// Close closes the connection
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
