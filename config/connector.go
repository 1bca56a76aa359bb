package config

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
)

// initConnector runs a fixed list of statements on every new physical
// connection before database/sql hands it out.
type initConnector struct {
	base driver.Connector
	stmt []string
}

var _ driver.Connector = (*initConnector)(nil)

func newConnector(driverName, dsn string, initSQL []string) (driver.Connector, error) {
	// sql.Open only resolves the registered driver; it does not connect
	probe, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	drv := probe.Driver()
	_ = probe.Close()

	var base driver.Connector
	if dc, ok := drv.(driver.DriverContext); ok {
		base, err = dc.OpenConnector(dsn)
		if err != nil {
			return nil, err
		}
	} else {
		base = dsnConnector{dsn: dsn, drv: drv}
	}

	if len(initSQL) == 0 {
		return base, nil
	}

	return &initConnector{base: base, stmt: initSQL}, nil
}

func (c *initConnector) Connect(ctx context.Context) (driver.Conn, error) {
	conn, err := c.base.Connect(ctx)
	if err != nil {
		return nil, err
	}

	for _, q := range c.stmt {
		if err := execConn(ctx, conn, q); err != nil {
			_ = conn.Close()

			return nil, fmt.Errorf("init sql %q: %w", q, err)
		}
	}

	return conn, nil
}

func (c *initConnector) Driver() driver.Driver {
	return c.base.Driver()
}

func execConn(ctx context.Context, conn driver.Conn, query string) error {
	if execer, ok := conn.(driver.ExecerContext); ok {
		_, err := execer.ExecContext(ctx, query, nil)
		if !errors.Is(err, driver.ErrSkip) {
			return err
		}
	}

	stmt, err := conn.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	if sc, ok := stmt.(driver.StmtExecContext); ok {
		_, err = sc.ExecContext(ctx, nil)

		return err
	}

	_, err = stmt.Exec(nil) //nolint:staticcheck // driver without StmtExecContext

	return err
}

// dsnConnector adapts a driver without DriverContext.
type dsnConnector struct {
	dsn string
	drv driver.Driver
}

func (c dsnConnector) Connect(_ context.Context) (driver.Conn, error) {
	return c.drv.Open(c.dsn)
}

func (c dsnConnector) Driver() driver.Driver {
	return c.drv
}
