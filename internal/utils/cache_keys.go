package utils

import (
	"strings"

	"github.com/kamusku/kamus/internal/domain/dictionary"
)

const (
	SuggestionsCachePrefix = "suggestions:v1:"
	SitemapCachePrefix     = "sitemap:v1:"
)

func BuildSuggestionsCacheKey(q string, category *dictionary.Category) string {
	c := ""
	if category != nil {
		c = string(*category)
	}

	return SuggestionsCachePrefix + "type=" + c + ":q=" + strings.ToLower(strings.TrimSpace(q))
}

func BuildSitemapCacheKey(baseURL string) string {
	return SitemapCachePrefix + baseURL
}
