package promptbuild

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kayz/promptsmith/internal/config"
)

var auditMu sync.Mutex

// Auditor appends one JSONL record per render to a daily file and prunes
// files older than the retention window.
type Auditor struct {
	cfg config.AuditConfig
	now func() time.Time
}

// NewAuditor returns an Auditor for cfg. A disabled config yields an
// Auditor whose Record is a no-op.
func NewAuditor(cfg config.AuditConfig) *Auditor {
	return &Auditor{cfg: cfg, now: time.Now}
}

type auditRecord struct {
	ID           string   `json:"id"`
	Timestamp    string   `json:"timestamp"`
	BuilderID    string   `json:"builder_id"`
	Encoding     Encoding `json:"encoding"`
	ConfigDigest string   `json:"config_digest"`
	Sections     []string `json:"sections"`
	Chars        int      `json:"chars"`
	FinalPrompt  string   `json:"final_prompt"`
}

// Record writes an audit line for text, which b rendered in enc.
func (a *Auditor) Record(b *Builder, enc Encoding, text string) error {
	if a == nil || !a.cfg.Enabled {
		return nil
	}

	auditDir := a.resolvePath(a.cfg.Dir)
	if err := os.MkdirAll(auditDir, 0755); err != nil {
		return fmt.Errorf("create audit dir: %w", err)
	}

	now := a.now()
	fileName := fmt.Sprintf("%s-%s.jsonl", a.prefix(), now.Format("2006-01-02"))
	filePath := filepath.Join(auditDir, fileName)

	digest, err := ConfigDigest(b.ExportConfig())
	if err != nil {
		return err
	}
	record := auditRecord{
		ID:           uuid.NewString(),
		Timestamp:    now.Format(time.RFC3339),
		BuilderID:    b.ID(),
		Encoding:     b.resolveEncoding(enc),
		ConfigDigest: digest,
		Sections:     b.Sections(),
		Chars:        len(text),
		FinalPrompt:  text,
	}

	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}

	auditMu.Lock()
	defer auditMu.Unlock()

	if err := appendJSONL(filePath, line); err != nil {
		return err
	}

	return a.cleanupOldAuditFilesWithNow(now)
}

// ConfigDigest returns the hex sha256 of the JSON form of cfg.
func ConfigDigest(cfg StructuredConfig) (string, error) {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

func appendJSONL(filePath string, line []byte) error {
	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open audit file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write audit file: %w", err)
	}
	return nil
}

// CleanupOldAuditFiles removes audit files older than the retention window.
func (a *Auditor) CleanupOldAuditFiles() error {
	auditMu.Lock()
	defer auditMu.Unlock()
	return a.cleanupOldAuditFilesWithNow(a.now())
}

func (a *Auditor) cleanupOldAuditFilesWithNow(now time.Time) error {
	if !a.cfg.Enabled || a.cfg.RetentionDays <= 0 {
		return nil
	}

	auditDir := a.resolvePath(a.cfg.Dir)
	entries, err := os.ReadDir(auditDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("list audit dir: %w", err)
	}

	prefix := a.prefix()
	cutoff := now.AddDate(0, 0, -a.cfg.RetentionDays)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, prefix+"-") || !strings.HasSuffix(name, ".jsonl") {
			continue
		}

		filePath := filepath.Join(auditDir, name)
		fileDate, ok := parseAuditDate(name, prefix)
		if ok {
			if fileDate.Before(startOfDay(cutoff)) {
				if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("remove old audit file %s: %w", filePath, err)
				}
			}
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("stat audit file %s: %w", filePath, err)
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("remove old audit file %s: %w", filePath, err)
			}
		}
	}

	return nil
}

func (a *Auditor) prefix() string {
	prefix := strings.TrimSpace(a.cfg.FilePrefix)
	if prefix == "" {
		prefix = "render"
	}
	return prefix
}

func (a *Auditor) resolvePath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	root := a.cfg.RootDir
	if root == "" {
		root = "."
	}
	return filepath.Join(root, p)
}

func parseAuditDate(filename, prefix string) (time.Time, bool) {
	raw := strings.TrimSuffix(filename, ".jsonl")
	raw = strings.TrimPrefix(raw, prefix+"-")
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
