package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kamusku/kamus/internal/domain/dictionary"
	"github.com/kamusku/kamus/internal/domain/user"
	"github.com/kamusku/kamus/internal/security"
)

type AdminUserStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, username, email, passwordHash string) (user.User, error)
}

type AdminSeed struct {
	Username string
	Email    string
	Password string
}

// EnsureAdminUser creates the admin account once. An existing account with
// the same email is left untouched, password included.
func EnsureAdminUser(ctx context.Context, users AdminUserStore, seed AdminSeed, log *slog.Logger) (user.User, error) {
	if seed.Email == "" || seed.Password == "" {
		return user.User{}, errors.New("admin email and password are required")
	}

	existing, err := users.GetByEmail(ctx, seed.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return user.User{}, fmt.Errorf("lookup admin: %w", err)
	}

	hash, err := security.HashPassword(seed.Password)
	if err != nil {
		return user.User{}, fmt.Errorf("hash admin password: %w", err)
	}

	u, err := users.Create(ctx, seed.Username, seed.Email, hash)
	if err != nil {
		return user.User{}, fmt.Errorf("create admin: %w", err)
	}

	log.Info("admin user created", "user_id", u.ID, "email", u.Email)
	return u, nil
}

type EntrySeeder interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, req dictionary.CreateEntryRequest) (dictionary.Entry, error)
}

// SeedSampleEntries fills an empty store with a few starter words. A store
// that already holds entries is left alone.
func SeedSampleEntries(ctx context.Context, store EntrySeeder, log *slog.Logger) (int, error) {
	n, err := store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	if n > 0 {
		return 0, nil
	}

	created := 0
	for _, req := range SampleEntries() {
		if _, err := store.Create(ctx, req); err != nil {
			return created, fmt.Errorf("seed %q: %w", req.Word, err)
		}
		created++
	}

	log.Info("sample entries seeded", "count", created)
	return created, nil
}

func SampleEntries() []dictionary.CreateEntryRequest {
	return []dictionary.CreateEntryRequest{
		{
			Word:          "rumah",
			Type:          "kata benda",
			Pronunciation: ptr("/ru·mah/"),
			Definition:    "Bangunan untuk tempat tinggal manusia atau keluarga",
			Example:       ptr("Rumah kami terletak di pinggir kota"),
			Synonyms:      []string{"hunian", "tempat tinggal", "kediaman"},
			Category:      dictionary.CategoryGeneral,
		},
		{
			Word:          "love",
			Type:          "noun",
			Pronunciation: ptr("/lʌv/"),
			Definition:    "An intense feeling of deep affection",
			Example:       ptr("A mother's love for her children"),
			Synonyms:      []string{"affection", "adoration", "devotion"},
			Category:      dictionary.CategoryForeign,
		},
		{
			Word:          "beautiful",
			Type:          "adjective",
			Pronunciation: ptr("/ˈbjuːtɪfʊl/"),
			Definition:    "Pleasing the senses or mind aesthetically",
			Example:       ptr("She looked beautiful in her wedding dress"),
			Synonyms:      []string{"lovely", "attractive", "gorgeous"},
			Category:      dictionary.CategoryForeign,
		},
		{
			Word:          "kehidupan",
			Type:          "kata benda",
			Pronunciation: ptr("/ke·hi·dup·an/"),
			Definition:    "Keadaan atau hal hidup; segala sesuatu yang hidup",
			Example:       ptr("Kehidupan di kota besar sangat sibuk"),
			Synonyms:      []string{"hidup", "eksistensi", "keberadaan"},
			Category:      dictionary.CategoryGeneral,
		},
	}
}

func ptr(s string) *string { return &s }
