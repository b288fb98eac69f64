package db

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kamusku/kamus/internal/domain/dictionary"
)

type EntryCreator interface {
	Create(ctx context.Context, req dictionary.CreateEntryRequest) (dictionary.Entry, error)
}

type importWrapper struct {
	Entries []dictionary.CreateEntryRequest `json:"entries"`
}

// ImportResult summarizes a bulk import.
type ImportResult struct {
	Imported int
	Skipped  int
}

// ImportFile loads entries from a JSON file holding either a bare array or
// an {"entries": [...]} object.
func ImportFile(ctx context.Context, path string, store EntryCreator, log *slog.Logger) (ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImportResult{}, fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	return Import(ctx, f, store, log.With("file", path))
}

// Import validates each record with the same rules as the admin API and
// skips invalid ones.
func Import(ctx context.Context, r io.Reader, store EntryCreator, log *slog.Logger) (ImportResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return ImportResult{}, fmt.Errorf("read import: %w", err)
	}

	reqs, err := decodeEntries(data)
	if err != nil {
		return ImportResult{}, err
	}

	v := newEntryValidator()

	var res ImportResult
	for i, req := range reqs {
		if err := v.Struct(req); err != nil {
			log.Warn("import entry skipped", "index", i, "word", req.Word, "err", err)
			res.Skipped++
			continue
		}

		if _, err := store.Create(ctx, req); err != nil {
			return res, fmt.Errorf("import entry %d (%q): %w", i, req.Word, err)
		}
		res.Imported++
	}

	log.Info("dictionary import finished", "imported", res.Imported, "skipped", res.Skipped)
	return res, nil
}

func decodeEntries(data []byte) ([]dictionary.CreateEntryRequest, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	if data[0] == '[' {
		var list []dictionary.CreateEntryRequest
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("decode entry array: %w", err)
		}
		return list, nil
	}

	var w importWrapper
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode entries object: %w", err)
	}
	return w.Entries, nil
}

// newEntryValidator reads the `binding` tags used by the HTTP layer.
func newEntryValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	_ = v.RegisterValidation("dictionary_type", func(fl validator.FieldLevel) bool {
		return dictionary.Category(fl.Field().String()).Valid()
	})
	return v
}
