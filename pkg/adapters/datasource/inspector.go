package datasource

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-codegen/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-codegen/pkg/logging"
	"github.com/ekaya-inc/ekaya-codegen/pkg/models"
)

// DefaultConnectTimeout bounds opening and pinging a connection when the
// configuration does not say otherwise.
const DefaultConnectTimeout = 15 * time.Second

// Opener opens a database handle. It matches sqlx.Open and exists so tests can
// substitute a sqlmock-backed handle.
type Opener func(driverName, dsn string) (*sqlx.DB, error)

// InspectorConfig configures an Inspector.
type InspectorConfig struct {
	// DefaultType is the engine used when a connection string carries no
	// recognisable scheme.
	DefaultType    string
	ConnectTimeout time.Duration
	Opener         Opener
}

// Inspector implements SchemaInspector for every registered engine. It holds
// no connections between calls.
type Inspector struct {
	defaultType    string
	connectTimeout time.Duration
	open           Opener
	logger         *zap.Logger
}

var _ SchemaInspector = (*Inspector)(nil)

// NewInspector creates an Inspector. A nil logger is replaced with a no-op logger.
func NewInspector(cfg InspectorConfig, logger *zap.Logger) *Inspector {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	open := cfg.Opener
	if open == nil {
		open = sqlx.Open
	}
	return &Inspector{
		defaultType:    cfg.DefaultType,
		connectTimeout: timeout,
		open:           open,
		logger:         logger.Named("inspector"),
	}
}

// Resolve picks the engine for connString and returns its type and dialect.
func (i *Inspector) Resolve(connString string) (string, *Dialect, error) {
	dsType := Detect(connString)
	if dsType == "" {
		dsType = i.defaultType
	}
	reg, ok := lookup(dsType)
	if !ok || reg.Dialect == nil {
		return "", nil, apperrors.Connection(fmt.Sprintf("unsupported datasource type %q (not compiled in)", dsType), nil)
	}
	return dsType, reg.Dialect, nil
}

func (i *Inspector) TestConnection(ctx context.Context, connString string) bool {
	var ok bool
	err := i.withConnection(ctx, connString, func(db *sqlx.DB, dsType string, d *Dialect) error {
		query, args, err := d.Probe().PlaceholderFormat(d.Placeholder).ToSql()
		if err != nil {
			return err
		}
		rows, err := db.QueryxContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		ok = rows.Next()
		return rows.Err()
	})
	if err != nil {
		i.logger.Debug("Connection test failed", zap.String("error", logging.SanitizeError(err)))
		return false
	}
	return ok
}

func (i *Inspector) ListTables(ctx context.Context, connString string) ([]string, error) {
	tables := []string{}
	err := i.withConnection(ctx, connString, func(db *sqlx.DB, dsType string, d *Dialect) error {
		return i.selectInto(ctx, db, dsType, d, "list tables", d.Tables(), &tables)
	})
	if err != nil {
		return nil, err
	}
	return tables, nil
}

func (i *Inspector) GetColumns(ctx context.Context, table, connString string) ([]models.ColumnInfo, error) {
	if err := validateTableName(table); err != nil {
		return nil, err
	}
	columns := []models.ColumnInfo{}
	err := i.withConnection(ctx, connString, func(db *sqlx.DB, dsType string, d *Dialect) error {
		return i.selectInto(ctx, db, dsType, d, "get columns", d.Columns(table), &columns)
	})
	if err != nil {
		return nil, err
	}
	return columns, nil
}

func (i *Inspector) GetPrimaryKeys(ctx context.Context, table, connString string) ([]string, error) {
	if err := validateTableName(table); err != nil {
		return nil, err
	}
	keys := []string{}
	err := i.withConnection(ctx, connString, func(db *sqlx.DB, dsType string, d *Dialect) error {
		return i.selectInto(ctx, db, dsType, d, "get primary keys", d.PrimaryKeys(table), &keys)
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (i *Inspector) GetForeignKeys(ctx context.Context, table, connString string) ([]models.ForeignKeyInfo, error) {
	if err := validateTableName(table); err != nil {
		return nil, err
	}
	fks := []models.ForeignKeyInfo{}
	err := i.withConnection(ctx, connString, func(db *sqlx.DB, dsType string, d *Dialect) error {
		return i.selectInto(ctx, db, dsType, d, "get foreign keys", d.ForeignKeys(table), &fks)
	})
	if err != nil {
		return nil, err
	}
	return fks, nil
}

// withConnection opens a handle for connString, verifies it with a ping and
// runs fn. The handle is closed before returning on every path.
func (i *Inspector) withConnection(ctx context.Context, connString string, fn func(db *sqlx.DB, dsType string, d *Dialect) error) error {
	if strings.TrimSpace(connString) == "" {
		return apperrors.ConfigMissing("connection string is required")
	}

	dsType, d, err := i.Resolve(connString)
	if err != nil {
		return err
	}

	dsn, err := d.dsn(connString)
	if err != nil {
		return apperrors.Connection("parse connection string", err)
	}

	db, err := i.open(d.DriverName, dsn)
	if err != nil {
		return apperrors.Connection("open database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			i.logger.Debug("Failed to close database handle",
				zap.String("engine", dsType),
				zap.String("error", logging.SanitizeError(err)))
		}
	}()
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, i.connectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return apperrors.Connection("connect to database", err)
	}

	return fn(db, dsType, d)
}

func (i *Inspector) selectInto(ctx context.Context, db *sqlx.DB, dsType string, d *Dialect, op string, b sq.SelectBuilder, dest any) error {
	query, args, err := b.PlaceholderFormat(d.Placeholder).ToSql()
	if err != nil {
		return apperrors.Query(op+": build query", err)
	}

	start := time.Now()
	if err := db.SelectContext(ctx, dest, query, args...); err != nil {
		return apperrors.Query(op, err)
	}

	i.logger.Debug("Metadata query completed",
		zap.String("operation", op),
		zap.String("engine", dsType),
		zap.String("query", logging.SanitizeQuery(query)),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

func validateTableName(table string) error {
	if strings.TrimSpace(table) == "" {
		return apperrors.InvalidInput("table name is required")
	}
	return nil
}
