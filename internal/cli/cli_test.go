package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"task-manager/internal/config"
)

func runCLI(t *testing.T, dbPath string, args ...string) (stdout []byte, stderr []byte, err error) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	err = Execute(context.Background(), config.Default(), slog.New(slog.NewTextHandler(io.Discard, nil)),
		append([]string{"--db", dbPath}, args...), &outBuf, &errBuf)
	return outBuf.Bytes(), errBuf.Bytes(), err
}

// mustData runs a command that must succeed and decodes the "data" envelope into v.
func mustData(t *testing.T, dbPath string, v any, args ...string) {
	t.Helper()
	out, stderr, err := runCLI(t, dbPath, args...)
	if err != nil {
		t.Fatalf("%v: %v\nstderr: %s", args, err, stderr)
	}
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(out, &env); err != nil {
		t.Fatalf("%v: decode envelope: %v\n%s", args, err, out)
	}
	if v == nil {
		return
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("%v: decode data: %v\n%s", args, err, env.Data)
	}
}

type taskOut struct {
	ID          string  `json:"id"`
	CategoryID  string  `json:"categoryId"`
	Title       string  `json:"title"`
	Status      string  `json:"status"`
	Progress    int     `json:"progress"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"dueDate"`
	Order       int     `json:"order"`
	CompletedAt *string `json:"completedAt"`
}

type itemOut struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Completed  bool   `json:"completed"`
	DetailPlan string `json:"detailPlan"`
}

type detailOut struct {
	TaskID string `json:"taskId"`
	Plan   struct {
		Text      string    `json:"text"`
		Checklist []itemOut `json:"checklist"`
	} `json:"plan"`
}

func TestCategoryAndTaskFlow(t *testing.T) {
	db := filepath.Join(t.TempDir(), "tasks.db")

	var work struct {
		ID    string `json:"id"`
		Order int    `json:"order"`
	}
	mustData(t, db, &work, "categories", "add", "Work")
	if work.ID == "" || work.Order != 0 {
		t.Fatalf("category = %+v", work)
	}

	var a, b, c taskOut
	mustData(t, db, &a, "tasks", "add", work.ID, "A")
	mustData(t, db, &b, "tasks", "add", work.ID, "B", "--priority", "high", "--due", "2024-05-01")
	mustData(t, db, &c, "tasks", "add", work.ID, "C")
	if a.Order != 0 || b.Order != 1 || c.Order != 2 || c.Status != "todo" {
		t.Fatalf("orders = %d,%d,%d status = %s", a.Order, b.Order, c.Order, c.Status)
	}
	if b.Priority != "high" || b.DueDate == nil {
		t.Fatalf("task B = %+v", b)
	}

	var done taskOut
	mustData(t, db, &done, "tasks", "status", a.ID, "done")
	if done.Status != "done" || done.Progress != 100 || done.CompletedAt == nil {
		t.Fatalf("done task = %+v", done)
	}

	var prog taskOut
	mustData(t, db, &prog, "tasks", "progress", b.ID, "97")
	if prog.Progress != 100 || prog.CompletedAt != nil {
		t.Fatalf("progress task = %+v", prog)
	}

	var column []taskOut
	mustData(t, db, &column, "tasks", "move", c.ID, "0")
	if len(column) != 2 || column[0].ID != c.ID || column[1].ID != b.ID {
		t.Fatalf("todo column after move = %+v", column)
	}

	var list struct {
		CategoryID string               `json:"categoryId"`
		Columns    map[string][]taskOut `json:"columns"`
	}
	mustData(t, db, &list, "tasks", "list")
	if list.CategoryID != work.ID || len(list.Columns["todo"]) != 2 || len(list.Columns["done"]) != 1 {
		t.Fatalf("list = %+v", list)
	}

	var deleted struct {
		TasksRemoved int    `json:"tasksRemoved"`
		SelectedID   string `json:"selectedId"`
	}
	mustData(t, db, &deleted, "categories", "delete", work.ID)
	if deleted.TasksRemoved != 3 || deleted.SelectedID != "" {
		t.Fatalf("delete = %+v", deleted)
	}

	var cats struct {
		Categories []struct{ ID string } `json:"categories"`
	}
	mustData(t, db, &cats, "categories", "list")
	if len(cats.Categories) != 0 {
		t.Fatalf("categories left: %+v", cats.Categories)
	}
	if _, _, err := runCLI(t, db, "detail", "show", a.ID); err == nil {
		t.Fatal("detail of deleted task still readable")
	}
}

func TestDetailChecklistFlow(t *testing.T) {
	db := filepath.Join(t.TempDir(), "tasks.db")
	var cat struct{ ID string }
	mustData(t, db, &cat, "categories", "add", "Home")
	var task taskOut
	mustData(t, db, &task, "tasks", "add", cat.ID, "Paint")

	var d detailOut
	mustData(t, db, &d, "detail", "text", task.ID, "plan", "buy paint first")
	if d.Plan.Text != "buy paint first" {
		t.Fatalf("plan text = %q", d.Plan.Text)
	}

	mustData(t, db, &d, "detail", "check", "add", task.ID, "plan", "primer")
	mustData(t, db, &d, "detail", "check", "add", task.ID, "plan", "paint")
	if len(d.Plan.Checklist) != 2 {
		t.Fatalf("checklist = %+v", d.Plan.Checklist)
	}
	first, second := d.Plan.Checklist[0].ID, d.Plan.Checklist[1].ID

	mustData(t, db, &d, "detail", "check", "toggle", task.ID, "plan", first)
	mustData(t, db, &d, "detail", "check", "edit", task.ID, "plan", second, "two coats")
	mustData(t, db, &d, "detail", "check", "plan", task.ID, "plan", second, "roller, then brush")
	mustData(t, db, &d, "detail", "check", "move", task.ID, "plan", "1", "0")
	got := d.Plan.Checklist
	if got[0].ID != second || got[0].Text != "two coats" || got[0].DetailPlan == "" || !got[1].Completed {
		t.Fatalf("checklist = %+v", got)
	}

	var shown struct {
		Detail    detailOut      `json:"detail"`
		Checklist map[string]int `json:"checklist"`
	}
	mustData(t, db, &shown, "detail", "show", task.ID)
	if shown.Checklist["done"] != 1 || shown.Checklist["total"] != 2 || shown.Detail.Plan.Text != "buy paint first" {
		t.Fatalf("show = %+v", shown)
	}

	mustData(t, db, &d, "detail", "check", "remove", task.ID, "plan", first)
	if len(d.Plan.Checklist) != 1 {
		t.Fatalf("checklist after remove = %+v", d.Plan.Checklist)
	}

	if _, stderr, err := runCLI(t, db, "detail", "text", task.ID, "notes", "x"); err == nil || len(stderr) == 0 {
		t.Fatal("unknown section accepted")
	}
}

func TestSettingsAndRemind(t *testing.T) {
	db := filepath.Join(t.TempDir(), "tasks.db")

	var s struct {
		Theme         string `json:"theme"`
		Notifications struct {
			DueDate       bool `json:"dueDate"`
			DailyReminder bool `json:"dailyReminder"`
		} `json:"notifications"`
	}
	mustData(t, db, &s, "settings", "show")
	if s.Theme != "auto" || !s.Notifications.DueDate || s.Notifications.DailyReminder {
		t.Fatalf("defaults = %+v", s)
	}

	var sent struct {
		Sent bool `json:"sent"`
	}
	mustData(t, db, &sent, "remind")
	if sent.Sent {
		t.Fatal("reminder sent with nothing due and daily reminder off")
	}

	mustData(t, db, &s, "settings", "set", "--theme", "dark", "--daily-reminder")
	if s.Theme != "dark" || !s.Notifications.DailyReminder || !s.Notifications.DueDate {
		t.Fatalf("after set = %+v", s)
	}
	mustData(t, db, &sent, "remind")
	if !sent.Sent {
		t.Fatal("daily reminder not sent")
	}

	if _, _, err := runCLI(t, db, "settings", "set", "--theme", "neon"); err == nil {
		t.Fatal("unknown theme accepted")
	}
}

func TestBackupExportImport(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.db")
	dst := filepath.Join(dir, "dst.db")
	backup := filepath.Join(dir, "backup.json")

	var cat struct{ ID string }
	mustData(t, src, &cat, "categories", "add", "Work")
	var task taskOut
	mustData(t, src, &task, "tasks", "add", cat.ID, "Report")
	mustData(t, src, nil, "detail", "check", "add", task.ID, "execution", "draft")

	mustData(t, src, nil, "backup", "export", "--out", backup)
	raw, err := os.ReadFile(backup)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	var file struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(raw, &file); err != nil || file.Version != "1.0" {
		t.Fatalf("backup version = %q, %v", file.Version, err)
	}

	mustData(t, dst, nil, "categories", "add", "Old")
	var imported struct {
		Tasks int `json:"tasks"`
	}
	mustData(t, dst, &imported, "backup", "import", backup)
	if imported.Tasks != 1 {
		t.Fatalf("imported = %+v", imported)
	}

	var list struct {
		Categories []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"categories"`
		SelectedID string `json:"selectedId"`
	}
	mustData(t, dst, &list, "categories", "list")
	if len(list.Categories) != 1 || list.Categories[0].Name != "Work" || list.SelectedID != cat.ID {
		t.Fatalf("categories after replace = %+v", list)
	}

	var shown struct {
		Checklist map[string]int `json:"checklist"`
	}
	mustData(t, dst, &shown, "detail", "show", task.ID)
	if shown.Checklist["total"] != 1 {
		t.Fatalf("imported detail = %+v", shown)
	}

	if _, _, err := runCLI(t, dst, "backup", "import", backup, "--mode", "overwrite"); err == nil {
		t.Fatal("unknown import mode accepted")
	}
}

func TestFailedCommandReportsOnceAndClosesStore(t *testing.T) {
	db := filepath.Join(t.TempDir(), "tasks.db")

	app, cmd := newRootCmd(config.Default(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"--db", db, "tasks", "move", "ghost", "0"})

	if err := app.execute(context.Background(), cmd, &stderr); err == nil {
		t.Fatal("move of unknown task succeeded")
	}
	if n := strings.Count(stderr.String(), "task ghost not found"); n != 1 {
		t.Fatalf("error printed %d times:\n%s", n, stderr.String())
	}
	if app.db != nil {
		t.Fatal("store left open after failed command")
	}

	_, errOut, err := runCLI(t, db, "tasks", "move")
	if err == nil || strings.Count(string(errOut), "accepts 2 arg(s)") != 1 {
		t.Fatalf("argument error = %v, stderr:\n%s", err, errOut)
	}
}
