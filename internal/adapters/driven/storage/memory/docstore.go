package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/acta-dev/acta-mcp/internal/core/domain"
	"github.com/acta-dev/acta-mcp/internal/core/ports/driven"
	"github.com/acta-dev/acta-mcp/internal/logger"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// contextChars is the window of text reported on each side of an
// in-document search match.
const contextChars = 160

// maxSlugLen bounds generated section ids.
const maxSlugLen = 50

// DocStoreConfig holds the document store limits.
type DocStoreConfig struct {
	// MaxDocuments is the maximum number of loaded documents.
	MaxDocuments int

	// MaxTotalBytes is the aggregate size budget across all documents.
	MaxTotalBytes int

	// MaxDocumentBytes is the per-document size limit. Larger texts are
	// truncated before indexing.
	MaxDocumentBytes int

	// TTL is how long a document stays loaded, counted from load time.
	TTL time.Duration
}

// Validate checks the configured limits.
func (c DocStoreConfig) Validate() error {
	if c.MaxDocuments < 1 {
		return fmt.Errorf("%w: max documents must be >= 1, got %d", domain.ErrInvalidConfig, c.MaxDocuments)
	}
	if c.MaxDocumentBytes < 1 {
		return fmt.Errorf("%w: max document bytes must be >= 1, got %d", domain.ErrInvalidConfig, c.MaxDocumentBytes)
	}
	if c.MaxTotalBytes < c.MaxDocumentBytes {
		return fmt.Errorf("%w: total size budget %d is below the per-document limit %d",
			domain.ErrInvalidConfig, c.MaxTotalBytes, c.MaxDocumentBytes)
	}
	if c.TTL <= 0 {
		return fmt.Errorf("%w: document TTL must be > 0, got %s", domain.ErrInvalidConfig, c.TTL)
	}
	return nil
}

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu         sync.Mutex
	config     DocStoreConfig
	indexer    driven.SectionIndexer
	docs       map[string]*domain.LoadedDocument
	totalBytes int

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore(config DocStoreConfig, indexer driven.SectionIndexer) (*DocumentStore, error) {
	if indexer == nil {
		return nil, fmt.Errorf("%w: section indexer is required", domain.ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &DocumentStore{
		config:  config,
		indexer: indexer,
		docs:    make(map[string]*domain.LoadedDocument),
		now:     time.Now,
	}, nil
}

// Load indexes text into sections and stores the document, replacing any
// prior entry for the same ELI.
func (s *DocumentStore) Load(_ context.Context, eli, text string) (*domain.LoadedDocument, error) {
	if eli == "" {
		return nil, fmt.Errorf("%w: eli is required", domain.ErrInvalidInput)
	}

	truncated := false
	if len(text) > s.config.MaxDocumentBytes {
		logger.Warn("document %s exceeds size limit (%d > %d bytes), truncating",
			eli, len(text), s.config.MaxDocumentBytes)
		text = truncateAtBoundary(text, s.config.MaxDocumentBytes)
		truncated = true
	}
	sections := s.buildSections(text)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.purgeExpiredLocked(now)

	if old, ok := s.docs[eli]; ok {
		s.totalBytes -= old.SizeBytes
		delete(s.docs, eli)
	}

	doc := &domain.LoadedDocument{
		ELI:          eli,
		Text:         text,
		Sections:     sections,
		SizeBytes:    len(text),
		Truncated:    truncated,
		LoadedAt:     now,
		LastAccessed: now,
	}
	s.docs[eli] = doc
	s.totalBytes += doc.SizeBytes

	for len(s.docs) > s.config.MaxDocuments || s.totalBytes > s.config.MaxTotalBytes {
		s.evictLRULocked()
	}

	logger.Debug("loaded document %s (%d bytes, %d sections)", eli, doc.SizeBytes, len(doc.Sections))
	cp := *doc
	return &cp, nil
}

// IsLoaded reports whether the document is present and unexpired.
// It does not update LRU recency.
func (s *DocumentStore) IsLoaded(_ context.Context, eli string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.getLocked(eli)
	return err == nil
}

// TOC returns the table of contents for a loaded document.
func (s *DocumentStore) TOC(_ context.Context, eli string) ([]domain.TOCEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.getLocked(eli)
	if err != nil {
		return nil, err
	}
	doc.LastAccessed = s.now()

	toc := make([]domain.TOCEntry, len(doc.Sections))
	for i, sec := range doc.Sections {
		toc[i] = domain.TOCEntry{ID: sec.ID, Title: sec.Title}
	}
	return toc, nil
}

// sectionMatcher is one step of the selector resolution chain.
// Matchers are pure and tried in fixed order; the first hit wins.
type sectionMatcher func(selector string, sec domain.Section) bool

var sectionMatchers = []sectionMatcher{
	func(selector string, sec domain.Section) bool {
		return sec.ID == selector
	},
	func(selector string, sec domain.Section) bool {
		return strings.EqualFold(sec.Title, selector)
	},
	func(selector string, sec domain.Section) bool {
		n := normalizeTokens(selector)
		return n != "" && (n == normalizeTokens(sec.Title) || n == normalizeTokens(sec.ID))
	},
}

/// Section resolves a selector to a section. Resolution order: exact id
// match, case-insensitive title match, normalized token match.
func (s *DocumentStore) Section(_ context.Context, eli, selector string) (*domain.Section, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.getLocked(eli)
	if err != nil {
		return nil, err
	}
	doc.LastAccessed = s.now()

	for _, match := range sectionMatchers {
		for i := range doc.Sections {
			if match(selector, doc.Sections[i]) {
				cp := doc.Sections[i]
				return &cp, nil
			}
		}
	}
	return nil, fmt.Errorf("section %q in %s: %w", selector, eli, domain.ErrSectionNotFound)
}

// SearchIn performs a case-insensitive substring search over the
// document's sections, reporting every match in document order.
func (s *DocumentStore) SearchIn(_ context.Context, eli, query string) ([]domain.SearchHit, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.getLocked(eli)
	if err != nil {
		return nil, err
	}
	doc.LastAccessed = s.now()

	var hits []domain.SearchHit
	needle := strings.ToLower(query)
	for _, sec := range doc.Sections {
		body := sec.Body
		haystack, offsets := foldCase(body)
		for pos := 0; ; {
			i := strings.Index(haystack[pos:], needle)
			if i < 0 {
				break
			}
			foldStart := pos + i
			foldEnd := foldStart + len(needle)
			start := offsets[foldStart]
			end := offsets[foldEnd]

			ctxStart := start - contextChars
			if ctxStart < 0 {
				ctxStart = 0
			}
			ctxEnd := end + contextChars
			if ctxEnd > len(body) {
				ctxEnd = len(body)
			}

			hits = append(hits, domain.SearchHit{
				SectionID:    sec.ID,
				SectionTitle: sec.Title,
				MatchedText:  body[start:end],
				Context:      body[ctxStart:ctxEnd],
				Offset:       sec.StartOffset + start,
			})
			pos = foldEnd
		}
	}
	return hits, nil
}

// foldCase lowercases s for matching and records, for each byte of the
// folded form plus one past the end, the offset of the originating byte
// in s. Lowering can change a rune's encoded width (İ, the Kelvin sign),
// so indexes into the folded text cannot be applied to s directly.
func foldCase(s string) (string, []int) {
	var b strings.Builder
	b.Grow(len(s))
	offsets := make([]int, 0, len(s)+1)
	for i, r := range s {
		lower := unicode.ToLower(r)
		for n := utf8.RuneLen(lower); n > 0; n-- {
			offsets = append(offsets, i)
		}
		b.WriteRune(lower)
	}
	offsets = append(offsets, len(s))
	return b.String(), offsets
}

// Evict removes the document, if present.
func (s *DocumentStore) Evict(_ context.Context, eli string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(eli)
}

// ListLoaded returns accounting metadata for all live documents, ordered
// by load time. A pure read: it does not update LRU recency.
func (s *DocumentStore) ListLoaded(_ context.Context) []domain.DocumentInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked(s.now())

	infos := make([]domain.DocumentInfo, 0, len(s.docs))
	for _, doc := range s.docs {
		infos = append(infos, domain.DocumentInfo{
			ELI:          doc.ELI,
			SizeBytes:    doc.SizeBytes,
			SectionCount: len(doc.Sections),
			Truncated:    doc.Truncated,
			LoadedAt:     doc.LoadedAt,
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		if !infos[i].LoadedAt.Equal(infos[j].LoadedAt) {
			return infos[i].LoadedAt.Before(infos[j].LoadedAt)
		}
		return infos[i].ELI < infos[j].ELI
	})
	return infos
}

// buildSections indexes text into sections. Every document gets at least
// one section: the whole text when no headings are detected, and a
// preamble section when content precedes the first heading.
func (s *DocumentStore) buildSections(text string) []domain.Section {
	headings := s.indexer.Index(text)
	if len(headings) == 0 {
		return []domain.Section{{
			ID:          "document",
			Title:       "Document",
			StartOffset: 0,
			EndOffset:   len(text),
			Body:        text,
		}}
	}

	var sections []domain.Section
	if headings[0].Offset > 0 && strings.TrimSpace(text[:headings[0].Offset]) != "" {
		sections = append(sections, domain.Section{
			ID:          "preamble",
			Title:       "Preamble",
			StartOffset: 0,
			EndOffset:   headings[0].Offset,
			Body:        text[:headings[0].Offset],
		})
	}

	seen := make(map[string]int)
	for i, h := range headings {
		end := len(text)
		if i+1 < len(headings) {
			end = headings[i+1].Offset
		}

		id := slugify(h.Title)
		if id == "" {
			id = fmt.Sprintf("section_%d", i+1)
		}
		seen[id]++
		if n := seen[id]; n > 1 {
			id = fmt.Sprintf("%s_%d", id, n)
		}

		sections = append(sections, domain.Section{
			ID:          id,
			Title:       h.Title,
			StartOffset: h.Offset,
			EndOffset:   end,
			Body:        text[h.Offset:end],
		})
	}
	return sections
}

// getLocked returns the live document or ErrNotLoaded, removing it if the
// TTL has run out. Must be called under the lock.
func (s *DocumentStore) getLocked(eli string) (*domain.LoadedDocument, error) {
	doc, ok := s.docs[eli]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", eli, domain.ErrNotLoaded)
	}
	if s.expiredLocked(doc, s.now()) {
		s.removeLocked(eli)
		return nil, fmt.Errorf("document %s: %w", eli, domain.ErrNotLoaded)
	}
	return doc, nil
}

func (s *DocumentStore) expiredLocked(doc *domain.LoadedDocument, now time.Time) bool {
	return !now.Before(doc.LoadedAt.Add(s.config.TTL))
}

func (s *DocumentStore) removeLocked(eli string) {
	if doc, ok := s.docs[eli]; ok {
		s.totalBytes -= doc.SizeBytes
		delete(s.docs, eli)
	}
}

func (s *DocumentStore) purgeExpiredLocked(now time.Time) {
	for eli, doc := range s.docs {
		if s.expiredLocked(doc, now) {
			s.removeLocked(eli)
		}
	}
}

// evictLRULocked removes the least recently accessed document, breaking
// ties by load time, then ELI.
func (s *DocumentStore) evictLRULocked() {
	var victim *domain.LoadedDocument
	for _, doc := range s.docs {
		if victim == nil ||
			doc.LastAccessed.Before(victim.LastAccessed) ||
			(doc.LastAccessed.Equal(victim.LastAccessed) &&
				(doc.LoadedAt.Before(victim.LoadedAt) ||
					(doc.LoadedAt.Equal(victim.LoadedAt) && doc.ELI < victim.ELI))) {
			victim = doc
		}
	}
	if victim == nil {
		return
	}
	logger.Debug("evicting LRU document %s (%d bytes)", victim.ELI, victim.SizeBytes)
	s.removeLocked(victim.ELI)
}

// truncateAtBoundary cuts text to at most limit bytes, backing off to the
// previous line break so a heading line is never split. Falls back to the
// nearest rune boundary when the text has no line breaks.
func truncateAtBoundary(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := limit
	if i := strings.LastIndexByte(text[:cut], '\n'); i > 0 {
		cut = i
	}
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// slugify derives a stable section id from a heading: lowercase
// alphanumeric tokens joined by underscores, e.g. "Art. 1." -> "art_1".
func slugify(title string) string {
	slug := strings.Join(tokens(title), "_")
	if len(slug) > maxSlugLen {
		cut := maxSlugLen
		for cut > 0 && !utf8.RuneStart(slug[cut]) {
			cut--
		}
		slug = slug[:cut]
	}
	return slug
}

// normalizeTokens reduces a selector, title or id to its alphanumeric
// token sequence, so "art_1" and "Art. 1" compare equal.
func normalizeTokens(s string) string {
	return strings.Join(tokens(s), " ")
}

func tokens(s string) []string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Fields(mapped)
}
