package repo_test

import (
	"testing"

	"github.com/pkordes/slot-scheduler/testutil"
)

// TestPgStore runs the shared store behaviour against Postgres. Every subtest
// gets its own rolled-back transaction. Skipped without TEST_DATABASE_URL.
func TestPgStore(t *testing.T) {
	testutil.StoreContract(t, testutil.NewPgTxStore)
}
