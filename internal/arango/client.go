// Package arango wraps the ArangoDB driver with the command set the rest of
// the service consumes: database/collection/graph lifecycle, bulk upserts
// with per-document error collection, AQL execution and analytics jobs.
//
// The client is constructed once at startup and passed by reference; nothing
// in here is a hidden global.
package arango

import (
	"context"
	"fmt"

	driver "github.com/arangodb/go-driver"
	driverhttp "github.com/arangodb/go-driver/http"
	"go.uber.org/zap"
)

type Client struct {
	cli    driver.Client
	logger *zap.Logger
}

func NewClient(url, password string, logger *zap.Logger) (*Client, error) {
	conn, err := driverhttp.NewConnection(driverhttp.ConnectionConfig{
		Endpoints: []string{url},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to arango: %w", err)
	}

	cli, err := driver.NewClient(driver.ClientConfig{
		Connection:     conn,
		Authentication: driver.BasicAuthentication("root", password),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create arango client: %w", err)
	}

	return &Client{cli: cli, logger: logger}, nil
}

// EnsureDatabase creates the named database if it does not exist.
func (c *Client) EnsureDatabase(ctx context.Context, name string) error {
	exists, err := c.cli.DatabaseExists(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check database %s: %w", name, err)
	}
	if exists {
		return nil
	}
	if _, err := c.cli.CreateDatabase(ctx, name, nil); err != nil {
		return fmt.Errorf("failed to create database %s: %w", name, err)
	}
	return nil
}

// DropDatabase removes the named database if it exists.
func (c *Client) DropDatabase(ctx context.Context, name string) error {
	exists, err := c.cli.DatabaseExists(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check database %s: %w", name, err)
	}
	if !exists {
		return nil
	}
	db, err := c.cli.Database(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to open database %s: %w", name, err)
	}
	if err := db.Remove(ctx); err != nil {
		return fmt.Errorf("failed to drop database %s: %w", name, err)
	}
	return nil
}

// Database opens a handle on an existing workspace database.
func (c *Client) Database(ctx context.Context, name string) (*Database, error) {
	db, err := c.cli.Database(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", name, err)
	}
	return &Database{db: db, logger: c.logger}, nil
}
