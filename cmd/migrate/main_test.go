package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestMigrateCommands(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "migrate.db"))
	t.Setenv("ENV", "test")

	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		cmd := newRootCmd()
		cmd.SetOut(&out)
		cmd.SetArgs(args)
		err := cmd.Execute()
		return out.String(), err
	}

	steps := []struct {
		args []string
		want string
	}{
		{[]string{"version"}, "No migrations applied yet"},
		{[]string{"up"}, "Migrations applied"},
		{[]string{"up"}, "Schema is up to date"},
		{[]string{"version"}, "Version: 3, Dirty: false"},
		{[]string{"down", "2"}, "Rolled back 2 migration(s)"},
		{[]string{"version"}, "Version: 1, Dirty: false"},
	}
	for _, s := range steps {
		out, err := run(s.args...)
		if err != nil {
			t.Fatalf("%v: unexpected error: %v", s.args, err)
		}
		if !strings.Contains(out, s.want) {
			t.Errorf("%v: expected %q, got %q", s.args, s.want, out)
		}
	}

	if _, err := run("down", "zero"); err == nil || !strings.Contains(err.Error(), "invalid step count") {
		t.Errorf("expected an invalid step count error, got %v", err)
	}
}
