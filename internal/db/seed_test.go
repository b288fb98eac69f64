package db

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kamusku/kamus/internal/domain/dictionary"
	"github.com/kamusku/kamus/internal/repo/memory"
	"github.com/kamusku/kamus/internal/security"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEnsureAdminUser_Idempotent(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUsersRepo()
	seed := AdminSeed{Username: "admin", Email: "admin123@gmail.com", Password: "admin123"}

	first, err := EnsureAdminUser(ctx, users, seed, discardLogger())
	if err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := security.CheckPassword(first.PasswordHash, "admin123"); err != nil {
		t.Fatalf("admin password must be stored as bcrypt: %v", err)
	}

	seed.Password = "changed"
	second, err := EnsureAdminUser(ctx, users, seed, discardLogger())
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if second.ID != first.ID || second.PasswordHash != first.PasswordHash {
		t.Fatalf("existing admin must be left untouched")
	}

	if _, err := EnsureAdminUser(ctx, users, AdminSeed{Email: "x@example.com"}, discardLogger()); err == nil {
		t.Fatalf("expected an error without a password")
	}
}

func TestSeedSampleEntries_OnlyWhenEmpty(t *testing.T) {
	ctx := context.Background()
	entries := memory.NewEntriesRepo()

	n, err := SeedSampleEntries(ctx, entries, discardLogger())
	if err != nil || n != 4 {
		t.Fatalf("expected 4 seeded entries, got %d (%v)", n, err)
	}

	n, err = SeedSampleEntries(ctx, entries, discardLogger())
	if err != nil || n != 0 {
		t.Fatalf("second run should seed nothing, got %d (%v)", n, err)
	}

	kbbi := dictionary.CategoryGeneral
	list, err := entries.List(ctx, &kbbi)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Word != "rumah" || list[1].Word != "kehidupan" {
		t.Fatalf("unexpected kbbi seed: %+v", list)
	}
}

func TestImport_ArrayAndWrapper(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		body         string
		wantImported int
		wantSkipped  int
		wantErr      bool
	}{
		{
			name:         "bare_array",
			body:         `[{"word":"air","type":"nomina","definition":"Cairan jernih","dictionary_type":"kbbi"},{"word":"water","type":"noun","definition":"A clear liquid","dictionary_type":"english"}]`,
			wantImported: 2,
		},
		{
			name:         "wrapper_with_invalid_record",
			body:         `{"entries":[{"word":"api","type":"nomina","definition":"Panas dan cahaya","dictionary_type":"kbbi"},{"word":"x","type":"nomina","definition":"y","dictionary_type":"slang"}]}`,
			wantImported: 1,
			wantSkipped:  1,
		},
		{name: "empty_file", body: "  "},
		{name: "malformed", body: `{"entries": [`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewEntriesRepo()

			res, err := Import(ctx, strings.NewReader(tt.body), store, discardLogger())
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if res.Imported != tt.wantImported || res.Skipped != tt.wantSkipped {
				t.Fatalf("got %+v", res)
			}

			n, _ := store.Count(ctx)
			if n != tt.wantImported {
				t.Fatalf("store holds %d entries, want %d", n, tt.wantImported)
			}
		})
	}
}

func TestImportFile_LogsSummaryOnceWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kamus.json")
	body := `[{"word":"pohon","type":"kata benda","definition":"tumbuhan berbatang keras","dictionary_type":"kbbi"}]`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	res, err := ImportFile(context.Background(), path, memory.NewEntriesRepo(), log)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Imported != 1 {
		t.Fatalf("expected 1 imported, got %+v", res)
	}

	out := buf.String()
	if n := strings.Count(out, "dictionary import finished"); n != 1 {
		t.Fatalf("expected one summary line, got %d: %s", n, out)
	}
	if !strings.Contains(out, "file="+path) {
		t.Fatalf("summary should name the file: %s", out)
	}
}
