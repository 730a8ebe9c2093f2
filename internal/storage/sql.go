// Package storage provides the persistent store behind preferences and local
// operators. It defines the Storage interface along with a database/sql
// implementation that runs on SQLite (the default local file) or PostgreSQL.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"loathing_assistant/internal/models"
	"loathing_assistant/internal/pkg/logger"
	"loathing_assistant/internal/pkg/security"
	"loathing_assistant/internal/preferences"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:generate mockgen -destination=mocks/mock_storage.go -package=mocks loathing_assistant/internal/storage Storage

//go:embed schema/*.sql
var schemaFS embed.FS

// Dialect selects the database engine.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Predefined errors returned by the storage.
var (
	// ErrUnsupportedDialect is returned by Open for an unknown dialect.
	ErrUnsupportedDialect = errors.New("storage: unsupported dialect")
	// ErrConflict indicates that a unique value is already taken.
	ErrConflict = errors.New("storage: conflict")
	// ErrUnavailable indicates that the database cannot be reached.
	ErrUnavailable = errors.New("storage: unavailable")
)

// Storage defines the methods required for data storage operations.
type Storage interface {
	// Close closes the database connection.
	Close()

	// Preference methods.
	preferences.Persister

	// Operator authentication methods.
	CheckUser(ctx context.Context, user *models.User) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
}

// SQL implements the Storage interface on database/sql.
type SQL struct {
	dialect Dialect
	db      *sql.DB
	log     *logger.Logger
}

// Open connects to the database named by dsn, pings it and creates the
// schema.
func Open(dialect Dialect, dsn string, l *logger.Logger) (*SQL, error) {
	var driverName string
	switch dialect {
	case DialectSQLite:
		driverName = "sqlite"
	case DialectPostgres:
		driverName = "pgx"
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDialect, dialect)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		l.Sugar().Errorf("Failed to open a database: %s", err)
		return nil, err
	}
	if dialect == DialectSQLite {
		db.SetMaxOpenConns(1)
	}

	const defaultTimeout = 10 * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		l.Sugar().Errorf("Database ping failed: %s", err)
		db.Close()
		return nil, classify(err)
	}

	s := &SQL{dialect: dialect, db: db, log: l}
	if err := s.createSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	l.Sugar().Infof("Storage ready, dialect=%s", dialect)
	return s, nil
}

// Close closes the database connection if it is open.
func (s *SQL) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

func (s *SQL) createSchema(ctx context.Context) error {
	schema, err := schemaFS.ReadFile(fmt.Sprintf("schema/%s.sql", s.dialect))
	if err != nil {
		return fmt.Errorf("storage: read schema: %w", err)
	}
	for _, stmt := range strings.Split(string(schema), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			s.log.Sugar().Errorf("Failed to create schema: %s", err)
			return classify(err)
		}
	}
	return nil
}

// bind returns the placeholder of the pos-th argument.
func (s *SQL) bind(pos int) string {
	if s.dialect == DialectPostgres {
		return fmt.Sprintf("$%d", pos)
	}
	return "?"
}

func (s *SQL) query(format string, args int) string {
	ph := make([]any, args)
	for i := range ph {
		ph[i] = s.bind(i + 1)
	}
	return fmt.Sprintf(format, ph...)
}

// LoadPreferences returns every value of the section of user in scope.
func (s *SQL) LoadPreferences(ctx context.Context, scope preferences.Scope, user string) (map[string]string, error) {
	q := s.query(`SELECT name, value FROM preferences WHERE scope = %s AND section = %s;`, 2)
	rows, err := s.db.QueryContext(ctx, q, int(scope), user)
	if err != nil {
		s.log.Sugar().Errorf("Failed to execute a query loadPreferences: %s", err)
		return nil, classify(err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			s.log.Sugar().Errorf("Failed to scan preference in LoadPreferences method: %s", err)
			return nil, err
		}
		values[name] = value
	}
	if err := rows.Err(); err != nil {
		s.log.Sugar().Errorf("The last error encountered by Rows.Scan in LoadPreferences method: %s", err)
		return values, err
	}
	return values, nil
}

// SavePreference writes one value inside a transaction.
func (s *SQL) SavePreference(ctx context.Context, scope preferences.Scope, user, key, value string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(err)
	}
	defer tx.Rollback()

	q := s.query(`INSERT INTO preferences (scope, section, name, value) VALUES (%s, %s, %s, %s)
ON CONFLICT (scope, section, name) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP;`, 4)
	if _, err := tx.ExecContext(ctx, q, int(scope), user, key, value); err != nil {
		s.log.Sugar().Errorf("Failed to execute a query savePreference: %s", err)
		return classify(err)
	}

	if err = tx.Commit(); err != nil {
		return classify(err)
	}
	return nil
}

// CheckUser verifies the operator's credentials by retrieving the operator's
// ID and encrypted password, then checking the provided password against the
// stored hash. An unknown operator is returned with ID 0 and no error.
func (s *SQL) CheckUser(ctx context.Context, user *models.User) (*models.User, error) {
	var encryptedPassword string

	q := s.query(`SELECT id, password_hash FROM operators WHERE username = %s;`, 1)
	err := s.db.QueryRowContext(ctx, q, user.Username).Scan(&user.ID, &encryptedPassword)
	if errors.Is(err, sql.ErrNoRows) {
		return user, nil
	}
	if err != nil {
		s.log.Sugar().Errorf("Failed to execute a query checkUser: %s", err)
		return user, classify(err)
	}

	err = security.CheckPassword(encryptedPassword, user.Password)
	if err != nil {
		s.log.Sugar().Errorf("Password mismatch for operator %q", user.Username)
		return user, err
	}
	return user, nil
}

// CreateUser registers an operator by hashing the password and inserting
// the operator into the database.
func (s *SQL) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	encryptedPassword := security.HashPassword(user.Password)

	q := s.query(`INSERT INTO operators (username, password_hash) VALUES (%s, %s) RETURNING id;`, 2)
	err := s.db.QueryRowContext(ctx, q, user.Username, encryptedPassword).Scan(&user.ID)
	if err != nil {
		s.log.Sugar().Errorf("Failed to execute a query createUser: %s", err)
		return user, classify(err)
	}
	return user, nil
}

// classify maps driver errors onto the storage sentinels.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgerrcode.UniqueViolation:
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.Message)
		case pgerrcode.IsConnectionException(pgErr.Code), pgerrcode.IsInsufficientResources(pgErr.Code):
			return fmt.Errorf("%w: %s", ErrUnavailable, pgErr.Message)
		}
		return err
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%w: %s", ErrUnavailable, err)
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %s", ErrConflict, err)
		case sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_BUSY:
			return fmt.Errorf("%w: %s", ErrUnavailable, err)
		}
	}
	return err
}
