package promptbuild

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kayz/promptsmith/internal/config"
)

func TestAuditorRecordAppendsSameDay(t *testing.T) {
	dir := t.TempDir()
	a := NewAuditor(config.AuditConfig{
		Enabled:       true,
		RootDir:       dir,
		Dir:           "audit",
		RetentionDays: 7,
		FilePrefix:    "render",
	})

	b := New().WithIdentity("You are a release assistant.").WithCapabilities("Summarize changelogs")
	if err := a.Record(b, "", b.Render()); err != nil {
		t.Fatalf("write first audit record: %v", err)
	}
	if err := a.Record(b, EncodingDense, b.RenderAs(EncodingDense)); err != nil {
		t.Fatalf("write second audit record: %v", err)
	}

	auditFile := filepath.Join(dir, "audit", "render-"+time.Now().Format("2006-01-02")+".jsonl")
	data, err := os.ReadFile(auditFile)
	if err != nil {
		t.Fatalf("read audit file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 audit lines, got %d", len(lines))
	}

	var first, second auditRecord
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("unmarshal first line: %v", err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("unmarshal second line: %v", err)
	}
	if first.Timestamp == "" || first.ConfigDigest == "" || first.ID == "" {
		t.Fatalf("expected timestamp, id and config_digest to be set")
	}
	if first.Encoding != EncodingStructured || second.Encoding != EncodingDense {
		t.Fatalf("unexpected encodings: %s, %s", first.Encoding, second.Encoding)
	}
	if first.ConfigDigest != second.ConfigDigest {
		t.Fatalf("expected same digest for unchanged config")
	}
	if first.ID == second.ID {
		t.Fatalf("expected distinct record ids")
	}
	if first.BuilderID != b.ID() {
		t.Fatalf("expected builder id %s, got %s", b.ID(), first.BuilderID)
	}
	if len(first.Sections) != 2 || first.Sections[0] != "Identity" || first.Sections[1] != "Capabilities" {
		t.Fatalf("unexpected sections: %#v", first.Sections)
	}
}

func TestAuditorDisabledIsNoop(t *testing.T) {
	dir := t.TempDir()
	a := NewAuditor(config.AuditConfig{RootDir: dir, Dir: "audit"})
	b := New().WithIdentity("x")
	if err := a.Record(b, "", b.Render()); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "audit")); !os.IsNotExist(err) {
		t.Fatalf("expected no audit dir when disabled")
	}
}

func TestCleanupOldAuditFilesByDateAndModTime(t *testing.T) {
	dir := t.TempDir()
	auditDir := filepath.Join(dir, "audit")
	if err := os.MkdirAll(auditDir, 0755); err != nil {
		t.Fatalf("mkdir audit dir: %v", err)
	}

	now := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
	prefix := "render"

	oldByName := filepath.Join(auditDir, prefix+"-2026-02-18.jsonl")
	if err := os.WriteFile(oldByName, []byte("old"), 0644); err != nil {
		t.Fatalf("write old-by-name file: %v", err)
	}

	newByName := filepath.Join(auditDir, prefix+"-2026-02-26.jsonl")
	if err := os.WriteFile(newByName, []byte("new"), 0644); err != nil {
		t.Fatalf("write new-by-name file: %v", err)
	}

	fallbackOld := filepath.Join(auditDir, prefix+"-not-a-date.jsonl")
	if err := os.WriteFile(fallbackOld, []byte("fallback"), 0644); err != nil {
		t.Fatalf("write fallback file: %v", err)
	}
	oldModTime := now.AddDate(0, 0, -10)
	if err := os.Chtimes(fallbackOld, oldModTime, oldModTime); err != nil {
		t.Fatalf("set fallback old modtime: %v", err)
	}

	a := NewAuditor(config.AuditConfig{
		Enabled:       true,
		RootDir:       dir,
		Dir:           "audit",
		RetentionDays: 7,
		FilePrefix:    prefix,
	})

	if err := a.cleanupOldAuditFilesWithNow(now); err != nil {
		t.Fatalf("cleanup old audit files: %v", err)
	}

	if _, err := os.Stat(oldByName); !os.IsNotExist(err) {
		t.Fatalf("expected old-by-name file removed")
	}
	if _, err := os.Stat(newByName); err != nil {
		t.Fatalf("expected new-by-name file kept: %v", err)
	}
	if _, err := os.Stat(fallbackOld); !os.IsNotExist(err) {
		t.Fatalf("expected fallback old-modtime file removed")
	}
}

func TestCleanupOldAuditFilesUsesClock(t *testing.T) {
	dir := t.TempDir()
	auditDir := filepath.Join(dir, "audit")
	if err := os.MkdirAll(auditDir, 0755); err != nil {
		t.Fatalf("mkdir audit dir: %v", err)
	}
	stale := filepath.Join(auditDir, "render-2026-01-01.jsonl")
	fresh := filepath.Join(auditDir, "render-2026-01-30.jsonl")
	for _, p := range []string{stale, fresh} {
		if err := os.WriteFile(p, []byte("{}\n"), 0644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}

	a := NewAuditor(config.AuditConfig{Enabled: true, RootDir: dir, Dir: "audit", RetentionDays: 7})
	a.now = func() time.Time { return time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC) }
	if err := a.CleanupOldAuditFiles(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("expected stale audit file removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("expected fresh audit file kept: %v", err)
	}
}
