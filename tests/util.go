package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/trezcool/campus/core"
	"github.com/trezcool/campus/core/user"
	"github.com/trezcool/campus/storage/database"
)

const (
	pgImage    = "postgres:16-alpine"
	pgDatabase = "campus_test"
	pgUser     = "campus"
	pgPassword = "campus"
)

// tables lists every application table, truncated between tests.
var tables = []string{
	"information_image", "notice", "information", "scope",
	"response", "quiz_taker_grade", "quiz_taker_quiz", "quiz_taker", "grade", "answer", "question", "quiz",
	"course", "programme", "department", "faculty", "level",
	"users",
}

var (
	dbOnce sync.Once
	testDB *sqlx.DB
	dbErr  error
)

// startDB runs a disposable PostgreSQL container and applies the migrations. The container lives as
// long as the test binary.
func startDB() (db *sqlx.DB, err error) {
	defer func() {
		// testcontainers panics when no Docker host can be found
		if r := recover(); r != nil {
			err = fmt.Errorf("starting postgres container: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg, err := postgres.RunContainer(ctx,
		testcontainers.WithImage(pgImage),
		postgres.WithDatabase(pgDatabase),
		postgres.WithUsername(pgUser),
		postgres.WithPassword(pgPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		return nil, err
	}

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable", "timezone=utc")
	if err != nil {
		return nil, err
	}
	if db, err = sqlx.Open("postgres", dsn); err != nil {
		return nil, err
	}
	if err = db.PingContext(ctx); err != nil {
		return nil, err
	}
	if err = database.Migrate(ctx, db); err != nil {
		return nil, err
	}
	return db, nil
}

// PrepareDB returns a migrated, empty test database.
// The test is skipped in -short mode or when no container runtime is available.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	dbOnce.Do(func() { testDB, dbErr = startDB() })
	if dbErr != nil {
		t.Skipf("test database unavailable: %v", dbErr)
	}
	ResetDB(t, testDB)
	return testDB
}

// ResetDB empties every table and restarts the id sequences.
func ResetDB(t *testing.T, db *sqlx.DB) {
	t.Helper()
	q := "TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE"
	if _, err := db.Exec(q); err != nil {
		t.Fatalf("ResetDB() failed: %v", err)
	}
}

// NewValidator returns a validator and its translator, set up the way the API sets them up.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd string,
	isStaff, isActive bool,
	joinedAt ...time.Time,
) user.User {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(joinedAt) > 0 {
		tstamp = joinedAt[0].UTC()
	}
	usr := user.User{
		Name:       name,
		Email:      email,
		IsActive:   isActive,
		IsStaff:    isStaff,
		DateJoined: tstamp,

		PasswordHash: []byte{},
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}
