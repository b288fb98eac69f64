package handlers

import (
	"context"
	"encoding/xml"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kamusku/kamus/internal/cache"
	"github.com/kamusku/kamus/internal/domain/dictionary"
	"github.com/kamusku/kamus/internal/utils"
)

// MaxSitemapWords caps the word pages listed in one sitemap.
const MaxSitemapWords = 1000

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type EntryLister interface {
	List(ctx context.Context, category *dictionary.Category) ([]dictionary.Entry, error)
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type SitemapHandler struct {
	entries EntryLister
	baseURL string
	cache   *cache.Cache
	log     *slog.Logger
}

// NewSitemapHandler uses baseURL for every <loc>; when empty the request
// host is used with an https scheme.
func NewSitemapHandler(entries EntryLister, baseURL string, c *cache.Cache, log *slog.Logger) *SitemapHandler {
	if log == nil {
		log = slog.Default()
	}
	return &SitemapHandler{entries: entries, baseURL: baseURL, cache: c, log: log}
}

func (h *SitemapHandler) Sitemap(ctx *gin.Context) {
	base := h.baseURLFor(ctx)
	key := utils.BuildSitemapCacheKey(base)

	if h.cache != nil {
		if v, ok := h.cache.Get(key); ok {
			if body, ok := v.([]byte); ok {
				ctx.Data(http.StatusOK, "application/xml; charset=utf-8", body)
				return
			}
		}
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	entries, err := h.entries.List(cctx, nil)
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "sitemap_failed", "err", err)
		ctx.String(http.StatusInternalServerError, "Failed to generate sitemap")
		return
	}

	body, err := BuildSitemap(base, entries)
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "sitemap_encode_failed", "err", err)
		ctx.String(http.StatusInternalServerError, "Failed to generate sitemap")
		return
	}

	if h.cache != nil {
		h.cache.Set(key, body)
	}

	ctx.Data(http.StatusOK, "application/xml; charset=utf-8", body)
}

func (h *SitemapHandler) baseURLFor(ctx *gin.Context) string {
	if h.baseURL != "" {
		return h.baseURL
	}

	host := ctx.Request.Host
	if host == "" {
		host = "localhost:8080"
	}
	return "https://" + host
}

// BuildSitemap renders the static pages followed by up to MaxSitemapWords
// word pages in entry order.
func BuildSitemap(base string, entries []dictionary.Entry) ([]byte, error) {
	set := sitemapURLSet{
		XMLNS: sitemapNS,
		URLs: []sitemapURL{
			{Loc: base, ChangeFreq: "daily", Priority: "1.0"},
			{Loc: base + "/privacy-policy", ChangeFreq: "monthly", Priority: "0.5"},
			{Loc: base + "/terms-conditions", ChangeFreq: "monthly", Priority: "0.5"},
			{Loc: base + "/contact-us", ChangeFreq: "monthly", Priority: "0.5"},
		},
	}

	for _, e := range entries[:min(len(entries), MaxSitemapWords)] {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        base + "/word/" + escapeWord(e.Word),
			ChangeFreq: "weekly",
			Priority:   "0.8",
		})
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}

	return append([]byte(xml.Header), body...), nil
}

// uriComponentUnreserved are the marks url.QueryEscape escapes but browsers
// leave alone in a URI component.
var uriComponentUnreserved = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// escapeWord encodes a headword as a single path segment the same way the
// frontend links to word pages, so reserved marks like & = + : @ are escaped.
func escapeWord(word string) string {
	return uriComponentUnreserved.Replace(url.QueryEscape(word))
}
