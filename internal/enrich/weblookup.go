package enrich

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/nextbit-dev/storelift/internal/config"
	"github.com/nextbit-dev/storelift/internal/models"
)

const searchEndpoint = "https://html.duckduckgo.com/html/"

// WebLookup implements the external lookup layer: keyword search scoped to
// a short trust-ordered site list, candidate fetch, and strict identity
// validation of the landing page.
type WebLookup struct {
	sites       []string
	client      *http.Client
	cache       *PageCache
	maxPageSize int
}

// NewWebLookup creates the lookup layer. cache may be nil.
func NewWebLookup(cfg config.LookupConfig, cache *PageCache) *WebLookup {
	return &WebLookup{
		sites:       cfg.Sites,
		client:      &http.Client{Timeout: cfg.HTTPTimeout},
		cache:       cache,
		maxPageSize: cfg.MaxPageSize,
	}
}

// FindValidated tries successive search terms (trade identifier, part
// number, free-text name) against each trusted site until a candidate page
// validates. A page is valid only if its raw text contains the barcode or
// the part number verbatim; anything else is discarded even though search
// returned it. Returns (nil, nil) when search simply found nothing.
func (w *WebLookup) FindValidated(ctx context.Context, product *models.ProductRecord) (*CandidatePage, error) {
	terms := candidateTerms(product)
	if len(terms) == 0 {
		return nil, nil
	}

	fetchErrors := 0
	rejected := 0

	for _, site := range w.sites {
		for _, term := range terms {
			candidateURL, err := w.search(ctx, site, term)
			if err != nil {
				fetchErrors++
				continue
			}
			if candidateURL == "" {
				continue
			}

			raw, err := w.fetchPage(ctx, candidateURL)
			if err != nil {
				fetchErrors++
				continue
			}

			if !pageMatchesIdentity(raw, product) {
				rejected++
				continue
			}

			text, err := stripPage(raw, w.maxPageSize)
			if err != nil {
				rejected++
				continue
			}
			return &CandidatePage{URL: candidateURL, Text: text}, nil
		}
	}

	if rejected > 0 {
		return nil, ErrValidationFailed
	}
	if fetchErrors > 0 {
		return nil, ErrSourceUnavailable
	}
	return nil, nil
}

func candidateTerms(product *models.ProductRecord) []string {
	var terms []string
	for _, t := range []string{product.Barcode, product.MPN, product.Name} {
		if strings.TrimSpace(t) != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// search runs one site-scoped keyword query and returns the first result
// URL pointing at the site, or "" when nothing matched.
func (w *WebLookup) search(ctx context.Context, site, term string) (string, error) {
	query := url.Values{"q": {fmt.Sprintf("site:%s %s", site, term)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchEndpoint+"?"+query.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: search status %d", ErrSourceUnavailable, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrParseFailure, err)
	}

	var found string
	doc.Find("a.result__a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		if !ok {
			return true
		}
		resolved := resolveSearchLink(href)
		if strings.Contains(resolved, site) {
			found = resolved
			return false
		}
		return true
	})
	return found, nil
}

// resolveSearchLink unwraps the search engine's redirect wrapper.
func resolveSearchLink(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

// fetchPage returns the raw HTML of a candidate page, consulting the page
// cache first so repeated runs do not rehit retailer sites.
func (w *WebLookup) fetchPage(ctx context.Context, pageURL string) (string, error) {
	if w.cache != nil {
		if raw, ok := w.cache.Get(ctx, pageURL); ok {
			return raw, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: fetch status %d", ErrSourceUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	raw := string(body)

	if w.cache != nil {
		w.cache.Set(ctx, pageURL, raw)
	}
	return raw, nil
}

// pageMatchesIdentity applies the cross-contamination guard: the page must
// mention the trade identifier or the manufacturer part number verbatim.
func pageMatchesIdentity(raw string, product *models.ProductRecord) bool {
	if product.Barcode != "" && strings.Contains(raw, product.Barcode) {
		return true
	}
	if product.MPN != "" && strings.Contains(raw, product.MPN) {
		return true
	}
	return false
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// stripPage removes script/style/navigation chrome and returns the page's
// visible text, capped at maxBytes.
func stripPage(raw string, maxBytes int) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrParseFailure, err)
	}

	doc.Find("script, style, nav, header, footer, noscript, iframe, svg").Remove()

	text := whitespaceRun.ReplaceAllString(doc.Find("body").Text(), " ")
	text = strings.TrimSpace(text)
	if maxBytes > 0 && len(text) > maxBytes {
		// Back off to a rune boundary so the cap never splits an umlaut
		// into invalid UTF-8.
		for maxBytes > 0 && !utf8.RuneStart(text[maxBytes]) {
			maxBytes--
		}
		text = strings.TrimSpace(text[:maxBytes])
	}
	return text, nil
}
