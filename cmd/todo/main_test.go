package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nhle/todo-tracker/internal/api"
	"github.com/nhle/todo-tracker/internal/logging"
	"github.com/nhle/todo-tracker/tests/testutil"
)

type cli struct {
	t          *testing.T
	configPath string
	apiURL     string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	server, err := api.NewServer(api.ServerOptions{
		Store:  testutil.NewTestStore(t),
		Logger: logging.Discard(),
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	return &cli{
		t:          t,
		configPath: filepath.Join(t.TempDir(), "config.yaml"),
		apiURL:     ts.URL + "/api",
	}
}

func (c *cli) run(args ...string) (string, string, error) {
	c.t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--config", c.configPath, "--api-url", c.apiURL}, args...))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	stdout, stderr, err := c.run(args...)
	if err != nil {
		c.t.Fatalf("todo %s: %v\nstderr: %s", strings.Join(args, " "), err, stderr)
	}
	return stdout
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	want := []string{"serve", "list", "get", "add", "update", "done", "undone", "delete", "ui", "config"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("expected subcommand %q, got %v (%v)", name, cmd, err)
		}
	}
	if root.PersistentFlags().Lookup("api-url") == nil || root.PersistentFlags().Lookup("config") == nil {
		t.Fatal("expected --config and --api-url persistent flags")
	}
}

func TestTodoLifecycle(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("add", "Buy", "milk", "-d", "two litres", "-p", "high")
	if !strings.Contains(out, "Todo #1 created") {
		t.Fatalf("unexpected add output %q", out)
	}
	c.mustRun("add", "Walk the dog", "-s", "active")

	out = c.mustRun("list")
	for _, want := range []string{"Buy milk", "Walk the dog", "high", "active", "2 of 2 todos"} {
		if !strings.Contains(out, want) {
			t.Fatalf("list output missing %q:\n%s", want, out)
		}
	}

	out = c.mustRun("list", "--priority", "high")
	if !strings.Contains(out, "Buy milk") || strings.Contains(out, "Walk the dog") {
		t.Fatalf("priority filter not applied:\n%s", out)
	}

	out = c.mustRun("update", "1", "--title", "Buy oat milk", "--status", "inactive")
	if !strings.Contains(out, "Todo #1 updated") {
		t.Fatalf("unexpected update output %q", out)
	}
	c.mustRun("done", "1")

	out = c.mustRun("get", "1", "--json")
	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode get output: %v\n%s", err, out)
	}
	if got["title"] != "Buy oat milk" || got["status"] != "inactive" || got["completed"] != true {
		t.Fatalf("unexpected todo %v", got)
	}
	if got["description"] != "two litres" {
		t.Fatalf("update should keep the description, got %v", got["description"])
	}

	c.mustRun("update", "1", "--clear-description")
	out = c.mustRun("get", "1", "--json")
	got = nil
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode get output: %v\n%s", err, out)
	}
	if desc, present := got["description"]; !present || desc != nil {
		t.Fatalf("expected the description to be cleared, got %v", desc)
	}

	out = c.mustRun("get", "2")
	if !strings.Contains(out, "Walk the dog") || !strings.Contains(out, "(none)") {
		t.Fatalf("unexpected detail output:\n%s", out)
	}

	out = c.mustRun("delete", "1")
	if !strings.Contains(out, "Todo #1 deleted") {
		t.Fatalf("unexpected delete output %q", out)
	}
	_, stderr, err := c.run("get", "1")
	if !errors.Is(err, errReported) || !strings.Contains(stderr, "Not Found") {
		t.Fatalf("expected a reported not found error, got %v: %q", err, stderr)
	}
}

func TestListJSONAndEmpty(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("list")
	if !strings.Contains(out, "No todos found.") {
		t.Fatalf("unexpected empty list output %q", out)
	}

	c.mustRun("add", "alpha")
	c.mustRun("add", "beta")
	out = c.mustRun("list", "--json", "--sort", "title", "--desc", "--limit", "1")
	var todos []map[string]any
	if err := json.Unmarshal([]byte(out), &todos); err != nil {
		t.Fatalf("decode list output: %v\n%s", err, out)
	}
	if len(todos) != 1 || todos[0]["title"] != "beta" {
		t.Fatalf("unexpected page %v", todos)
	}
}

func TestErrorsAreReported(t *testing.T) {
	c := newCLI(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "blank title",
			args: []string{"add", "   "},
			want: []string{"Der Titel darf nicht leer sein."},
		},
		{
			name: "unknown priority",
			args: []string{"add", "x", "-p", "urgent"},
			want: []string{"Invalid value for priority. Allowed values are: low, medium, high, unknown"},
		},
		{
			name: "unknown status filter",
			args: []string{"list", "--status", "archived"},
			want: []string{"Invalid value for status. Allowed values are: active, inactive, pending"},
		},
		{
			name: "missing todo",
			args: []string{"delete", "42"},
			want: []string{"Not Found"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stdout, stderr, err := c.run(tc.args...)
			if !errors.Is(err, errReported) {
				t.Fatalf("expected errReported, got %v", err)
			}
			if stdout != "" {
				t.Fatalf("expected nothing on stdout, got %q", stdout)
			}
			for _, want := range tc.want {
				if !strings.Contains(stderr, want) {
					t.Fatalf("stderr %q does not contain %q", stderr, want)
				}
			}
		})
	}
}

func TestArgumentErrors(t *testing.T) {
	c := newCLI(t)

	if _, _, err := c.run("get", "abc"); err == nil || !strings.Contains(err.Error(), `invalid todo id "abc"`) {
		t.Fatalf("expected an invalid id error, got %v", err)
	}
	if _, _, err := c.run("update", "1"); err == nil || !strings.Contains(err.Error(), "nothing to update") {
		t.Fatalf("expected a nothing to update error, got %v", err)
	}
	if _, _, err := c.run("update", "1", "-d", "x", "--clear-description"); err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
		t.Fatalf("expected a mutually exclusive error, got %v", err)
	}
}

func TestConfigInit(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("config", "init")
	if !strings.Contains(out, c.configPath) {
		t.Fatalf("unexpected init output %q", out)
	}
	if _, err := os.Stat(c.configPath); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	if _, _, err := c.run("config", "init"); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected init to refuse overwriting, got %v", err)
	}
	c.mustRun("config", "init", "--force")

	out = c.mustRun("config", "show")
	if !strings.Contains(out, "storage.driver") || !strings.Contains(out, c.apiURL) {
		t.Fatalf("show should print the effective config:\n%s", out)
	}

	out = c.mustRun("config", "path")
	if strings.TrimSpace(out) != c.configPath {
		t.Fatalf("unexpected path output %q", out)
	}
}
