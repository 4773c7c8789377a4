package db

import (
	"strings"
	"testing"
)

func TestInitMigrationKeepsChildCountConsistent(t *testing.T) {
	raw, err := migrationsFS.ReadFile("migrations/00001_init.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	sql := string(raw)

	for _, check := range []string{
		"CHECK (NOT has_children OR child_count > 0)",
		"CHECK (has_children OR child_count = 0)",
	} {
		if !strings.Contains(sql, check) {
			t.Errorf("adoption_requests is missing %q", check)
		}
	}
}
