package loaders

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/alvarohtrindade/funds-expenses-etl/internal/models"
	"github.com/alvarohtrindade/funds-expenses-etl/pkg/errors"
	"github.com/alvarohtrindade/funds-expenses-etl/pkg/logger"
)

// MySQLConfig holds the warehouse connection settings.
type MySQLConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	Table    string
}

// DSN renders the go-sql-driver connection string.
func (c MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// Validate checks that the required settings are present.
func (c MySQLConfig) Validate() error {
	if c.Host == "" || c.User == "" || c.Database == "" {
		return errors.ConfigurationError(errors.CodeMissingConfig, "mysql host/user/database", nil)
	}
	if c.Table == "" {
		return errors.ConfigurationError(errors.CodeMissingConfig, "mysql table", nil)
	}
	return nil
}

const createTableStmt = `CREATE TABLE IF NOT EXISTS %s (
	id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
	idcarga CHAR(36) NOT NULL,
	data DATE,
	nmfundo VARCHAR(255) NOT NULL,
	nmcategorizado VARCHAR(255) NOT NULL,
	tpfundo VARCHAR(20) NOT NULL,
	lancamento TEXT,
	lancamento_original TEXT,
	valor DECIMAL(18,2) NOT NULL,
	tipo_lancamento VARCHAR(10) NOT NULL,
	categoria VARCHAR(30) NOT NULL,
	despesa TINYINT(1) NOT NULL,
	custodiante VARCHAR(30) NOT NULL,
	ano SMALLINT NOT NULL,
	mes VARCHAR(12) NOT NULL,
	criado_em TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (id),
	KEY idx_idcarga (idcarga),
	KEY idx_data_fundo (data, nmfundo)
)`

const insertStmt = `INSERT INTO %s
	(idcarga, data, nmfundo, nmcategorizado, tpfundo, lancamento, lancamento_original,
	 valor, tipo_lancamento, categoria, despesa, custodiante, ano, mes)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// MySQLLoader persists canonical records into the warehouse table. Each
// Load call runs in one transaction tagged with a batch id so a bad load can
// be deleted by id.
type MySQLLoader struct {
	config MySQLConfig
	db     *sql.DB
	log    logger.Logger
}

// NewMySQLLoader validates the config and opens the connection pool.
func NewMySQLLoader(config MySQLConfig) (*MySQLLoader, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", config.DSN())
	if err != nil {
		return nil, errors.DatabaseError(errors.CodeConnectionFailed, "open", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &MySQLLoader{
		config: config,
		db:     db,
		log:    logger.GetGlobalLogger().WithComponent("mysql_loader"),
	}, nil
}

// Close releases the connection pool.
func (l *MySQLLoader) Close() error {
	return l.db.Close()
}

// Ping verifies connectivity.
func (l *MySQLLoader) Ping(ctx context.Context) error {
	if err := l.db.PingContext(ctx); err != nil {
		return errors.DatabaseError(errors.CodeConnectionFailed, "ping", err)
	}
	return nil
}

// EnsureTable creates the destination table when it does not exist.
func (l *MySQLLoader) EnsureTable(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, fmt.Sprintf(createTableStmt, l.config.Table)); err != nil {
		return errors.DatabaseError(errors.CodeQueryFailed, "create table", err)
	}
	return nil
}

// Truncate empties the destination table.
func (l *MySQLLoader) Truncate(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s", l.config.Table)); err != nil {
		return errors.DatabaseError(errors.CodeQueryFailed, "truncate", err)
	}
	l.log.WithField("table", l.config.Table).Warn("Destination table truncated")
	return nil
}

// Load inserts the batch in one transaction and returns the batch id.
func (l *MySQLLoader) Load(ctx context.Context, records []models.CanonicalRecord) (string, error) {
	if len(records) == 0 {
		return "", errors.ValidationError(errors.CodeEmptyBatch, "records", l.config.Table, nil)
	}

	batchID := uuid.NewString()

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return "", errors.DatabaseError(errors.CodeConnectionFailed, "begin", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(insertStmt, l.config.Table))
	if err != nil {
		return "", errors.DatabaseError(errors.CodeQueryFailed, "prepare insert", err)
	}
	defer stmt.Close()

	for i := range records {
		r := &records[i]
		_, err := stmt.ExecContext(ctx,
			batchID,
			sqlDate(r),
			r.FundName,
			r.CategorizedFund,
			r.FundType.String(),
			r.EntryText,
			r.EntryTextOriginal,
			r.Amount,
			r.EntryKind.String(),
			r.Category.String(),
			r.IsExpense,
			r.Custodian,
			r.Year,
			r.MonthName,
		)
		if err != nil {
			return "", errors.DatabaseError(errors.CodeQueryFailed, "insert", err).
				WithContext("row", i).
				WithContext("fund", r.FundName)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", errors.DatabaseError(errors.CodeQueryFailed, "commit", err)
	}

	l.log.WithFields(logger.Fields{
		"table":    l.config.Table,
		"rows":     len(records),
		"batch_id": batchID,
	}).Info("Batch loaded into MySQL")
	return batchID, nil
}

// sqlDate renders the record's date for the DATE column; rows kept without
// a parsable date insert NULL.
func sqlDate(r *models.CanonicalRecord) interface{} {
	if !r.HasDate() {
		return nil
	}
	return r.Date.Format("2006-01-02")
}
