package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/tutor-planner/internal/persistence"
	"github.com/example/tutor-planner/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	Subjects     persistence.SubjectRepository
	Institutes   persistence.InstituteRepository
	Accounts     persistence.AccountRepository
	Appointments persistence.AppointmentRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// will also register a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dir := tb.TempDir()
	dsn := "file:" + filepath.Join(dir, "planner.db") + "?_foreign_keys=on"

	pool, err := sqlite.NewConnectionPool(dsn)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := pool.Migrate(context.Background()); err != nil {
		_ = pool.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Subjects:     sqlite.NewSubjectRepository(pool),
		Institutes:   sqlite.NewInstituteRepository(pool),
		Accounts:     sqlite.NewAccountRepository(pool),
		Appointments: sqlite.NewAppointmentRepository(pool),
		cleanup: func() {
			_ = pool.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
