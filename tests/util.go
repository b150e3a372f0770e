package testutil

import (
	"context"
	"io"
	"log"
	"testing"
	"testing/fstest"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Damian-Sonwa/Academician-hub-sub001/core"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/content"
	"github.com/Damian-Sonwa/Academician-hub-sub001/core/user"
	"github.com/Damian-Sonwa/Academician-hub-sub001/services/logger"
	"github.com/Damian-Sonwa/Academician-hub-sub001/storage/database"
)

// Password satisfies the password policy for every user created by the tests.
const Password = "Tr0ub4dor&3x"

// NewConfig returns the configuration of the TEST environment.
func NewConfig() *core.Config {
	conf := core.NewConfig()
	conf.Env = "TEST"
	conf.TestMode = true
	conf.Debug = false
	return conf
}

// NewLogger returns a logger that neither prints nor reports.
func NewLogger(conf *core.Config) *logsvc.RollbarLogger {
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)
	return logger
}

// OpenSQLite opens a migrated in-memory SQLite database, closed with the test.
// The test is skipped when the driver cannot be used (e.g. built without cgo).
func OpenSQLite(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open(database.EngineSQLite, "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Skipf("sqlite3 unavailable: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		_ = db.Close()
		t.Skipf("sqlite3 unavailable: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db, "up"); err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	return db
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if usr.Roles == nil {
		usr.Roles = user.StudentRoles
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

// ContentFS holds one course, "biology", with three beginner weeks:
//   - week 1: 2 assignments, 2 quizzes
//   - week 2: 1 assignment, no quiz
//   - week 3: nothing to complete
//
// and a single advanced week.
func ContentFS() fstest.MapFS {
	return fstest.MapFS{
		"biology/course.yaml": {Data: []byte("title: Biology 101\ncategory: Science\n")},
		"biology/beginner/week_1.json": {Data: []byte(`{
  "topic": "Cells",
  "summary": "What cells are made of.",
  "materials": {"videos": [{"title": "Intro to cells", "url": "https://example.com/cells"}]},
  "assignments": [{"title": "Draw a cell"}, {"title": "Cell journal"}],
  "quizzes": [
    {"title": "Basics", "questions": [
      {"question": "Powerhouse of the cell?", "type": "multiple-choice", "options": ["Mitochondria", "Nucleus"], "answer": 0},
      {"question": "Cells have membranes.", "type": "true-false", "answer": true},
      {"question": "Plants store energy as ___.", "type": "fill-in-the-blank", "answer": "Starch"}
    ]},
    {"title": "Review", "questions": [
      {"question": "Bacteria have a nucleus.", "type": "true-false", "answer": false}
    ]}
  ]
}`)},
		"biology/beginner/week_2.yaml": {Data: []byte(`
topic: Genetics
summary: Genes and heredity.
assignments:
  - title: Family traits
`)},
		"biology/beginner/week_3.yaml": {Data: []byte("topic: Evolution\n")},
		"biology/advanced/week_1.yaml": {Data: []byte("topic: Biochemistry\n")},
	}
}

// NewContentStore loads ContentFS.
func NewContentStore(t *testing.T) *content.Store {
	validate, translator := core.NewValidator()
	content.InitValidators(validate, translator)
	store, err := content.NewStore(ContentFS(), validate)
	if err != nil {
		t.Fatalf("NewContentStore() failed: %v", err)
	}
	return store
}
