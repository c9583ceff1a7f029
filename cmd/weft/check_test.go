package main

import (
	"path/filepath"
	"testing"

	"github.com/weftlabs/weft/internal/config"
	"github.com/weftlabs/weft/internal/program"
)

func TestCheckCleanRecord(t *testing.T) {
	dir := setTestProject(t)
	falseTarget := 2
	rec := program.Record{
		TriggerType:   "webhook",
		TriggerConfig: map[string]any{"path": "/orders"},
		Steps: program.Program{
			{Kind: program.StepCondition, Config: map[string]any{"field": "total", "operator": "gt", "value": 100}, ElseGoto: &falseTarget},
			{Kind: program.StepAction, ActionType: "send_email", Config: map[string]any{"to": "sales@example.com"}},
			{Kind: program.StepAction, ActionType: "http_request", Config: map[string]any{"url": "https://example.com"}},
		},
	}
	path := filepath.Join(dir, "workflows", "orders.yaml")
	if err := program.SaveRecordFile(path, rec); err != nil {
		t.Fatalf("save record: %v", err)
	}
	if err := runCheck(checkCmd, []string{"orders"}); err != nil {
		t.Fatalf("check should pass: %v", err)
	}
}

func TestCheckNormalizesUnknownKinds(t *testing.T) {
	dir := setTestProject(t)
	rec := program.Record{
		TriggerType: "schedule",
		Steps: program.Program{
			{Kind: program.StepKind("custom_thing"), Config: map[string]any{"x": 1}},
		},
	}
	path := filepath.Join(dir, "workflows", "custom.yaml")
	if err := program.SaveRecordFile(path, rec); err != nil {
		t.Fatalf("save record: %v", err)
	}
	if err := runCheck(checkCmd, []string{"custom"}); err != nil {
		t.Fatalf("unknown kinds degrade to actions, check should still pass: %v", err)
	}
}

func TestResolveRecordPath(t *testing.T) {
	dir := setTestProject(t)
	cfg, err := config.NewConfig(dir)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	got := resolveRecordPath(cfg, "orders")
	want := filepath.Join(cfg.WorkflowDir(), "orders.yaml")
	if got != want {
		t.Fatalf("resolveRecordPath(orders) = %q, want %q", got, want)
	}
	abs := filepath.Join(dir, "elsewhere.yaml")
	if got := resolveRecordPath(cfg, abs); got != abs {
		t.Fatalf("absolute paths must pass through, got %q", got)
	}
}

func setTestProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := config.InitWeftDir(dir); err != nil {
		t.Fatalf("init weft dir: %v", err)
	}
	prev := projectDir
	projectDir = dir
	t.Cleanup(func() { projectDir = prev })
	return dir
}
