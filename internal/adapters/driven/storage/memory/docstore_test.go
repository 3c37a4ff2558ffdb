package memory

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acta-dev/acta-mcp/internal/core/domain"
	"github.com/acta-dev/acta-mcp/internal/indexer/markdown"
)

const actText = "Art. 1. Zakres.\n\nUstawa określa zasady.\n\nArt. 2. Definicje.\n\nUżyte w ustawie określenia oznaczają.\n"

func defaultDocConfig() DocStoreConfig {
	return DocStoreConfig{
		MaxDocuments:     10,
		MaxTotalBytes:    1 << 20,
		MaxDocumentBytes: 1 << 20,
		TTL:              2 * time.Hour,
	}
}

func newTestDocStore(t *testing.T, config DocStoreConfig) (*DocumentStore, *fakeClock) {
	t.Helper()
	store, err := NewDocumentStore(config, markdown.New())
	require.NoError(t, err)
	clock := newFakeClock()
	store.now = clock.Now
	return store, clock
}

func TestNewDocumentStore_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		config DocStoreConfig
	}{
		{"zero max documents", DocStoreConfig{MaxDocuments: 0, MaxTotalBytes: 100, MaxDocumentBytes: 100, TTL: time.Hour}},
		{"zero per-document limit", DocStoreConfig{MaxDocuments: 1, MaxTotalBytes: 100, MaxDocumentBytes: 0, TTL: time.Hour}},
		{"total budget below per-document limit", DocStoreConfig{MaxDocuments: 1, MaxTotalBytes: 50, MaxDocumentBytes: 100, TTL: time.Hour}},
		{"zero ttl", DocStoreConfig{MaxDocuments: 1, MaxTotalBytes: 100, MaxDocumentBytes: 100, TTL: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDocumentStore(tt.config, markdown.New())
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidConfig)
		})
	}
}

func TestNewDocumentStore_NilIndexer(t *testing.T) {
	_, err := NewDocumentStore(defaultDocConfig(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestDocumentStore_Load_IndexesSections(t *testing.T) {
	store, _ := newTestDocStore(t, defaultDocConfig())
	ctx := context.Background()

	doc, err := store.Load(ctx, "DU/2023/1", actText)
	require.NoError(t, err)

	require.Len(t, doc.Sections, 2)
	assert.Equal(t, "art_1_zakres", doc.Sections[0].ID)
	assert.Equal(t, "Art. 1. Zakres.", doc.Sections[0].Title)
	assert.Equal(t, "art_2_definicje", doc.Sections[1].ID)
	assert.False(t, doc.Truncated)
	assert.Equal(t, len(actText), doc.SizeBytes)

	// Sections are ordered and non-overlapping.
	assert.Equal(t, 0, doc.Sections[0].StartOffset)
	assert.Equal(t, doc.Sections[0].EndOffset, doc.Sections[1].StartOffset)
	assert.Equal(t, len(actText), doc.Sections[1].EndOffset)
}

func TestDocumentStore_Load_NoHeadings_SingleSection(t *testing.T) {
	store, _ := newTestDocStore(t, defaultDocConfig())
	ctx := context.Background()

	text := "plain text without any headings\n"
	doc, err := store.Load(ctx, "DU/2023/2", text)
	require.NoError(t, err)

	require.Len(t, doc.Sections, 1)
	assert.Equal(t, "document", doc.Sections[0].ID)
	assert.Equal(t, text, doc.Sections[0].Body)
}

func TestDocumentStore_Load_PreambleBeforeFirstHeading(t *testing.T) {
	store, _ := newTestDocStore(t, defaultDocConfig())
	ctx := context.Background()

	text := "W imieniu Rzeczypospolitej.\n\nArt. 1. Pierwszy.\n\ntreść\n"
	doc, err := store.Load(ctx, "DU/2023/3", text)
	require.NoError(t, err)

	require.Len(t, doc.Sections, 2)
	assert.Equal(t, "preamble", doc.Sections[0].ID)
	assert.Equal(t, 0, doc.Sections[0].StartOffset)
	assert.Equal(t, doc.Sections[1].StartOffset, doc.Sections[0].EndOffset)
}

func TestDocumentStore_Load_ReplacesPriorEntry(t *testing.T) {
	store, _ := newTestDocStore(t, defaultDocConfig())
	ctx := context.Background()

	_, err := store.Load(ctx, "DU/2023/1", "Art. 1. Stara wersja.\n")
	require.NoError(t, err)
	doc, err := store.Load(ctx, "DU/2023/1", actText)
	require.NoError(t, err)

	require.Len(t, doc.Sections, 2)
	infos := store.ListLoaded(ctx)
	require.Len(t, infos, 1)
	assert.Equal(t, len(actText), infos[0].SizeBytes)
}

func TestDocumentStore_Load_TruncatesOversized(t *testing.T) {
	config := defaultDocConfig()
	config.MaxDocumentBytes = 40
	config.MaxTotalBytes = 40
	store, _ := newTestDocStore(t, config)
	ctx := context.Background()

	text := "Art. 1. Pierwszy.\nkrotka tresc\nArt. 2. Drugi, ktory zostanie odciety w calosci.\n"
	doc, err := store.Load(ctx, "DU/2023/4", text)
	require.NoError(t, err)

	assert.True(t, doc.Truncated)
	assert.LessOrEqual(t, doc.SizeBytes, 40)
	// The cut backs off to a line break, so no heading line is split.
	assert.False(t, strings.HasSuffix(doc.Text, "Art"))
	require.NotEmpty(t, doc.Sections)
	assert.Equal(t, "Art. 1. Pierwszy.", doc.Sections[0].Title)
}

func TestDocumentStore_Section_SelectorChain(t *testing.T) {
	store, _ := newTestDocStore(t, defaultDocConfig())
	ctx := context.Background()

	text := "Art. 1\n\npierwsza tresc\n\nArt. 2\n\ndruga tresc\n"
	_, err := store.Load(ctx, "DU/2023/1", text)
	require.NoError(t, err)

	tests := []struct {
		name     string
		selector string
		wantID   string
	}{
		{"exact id", "art_1", "art_1"},
		{"exact title", "Art. 1", "art_1"},
		{"case-insensitive title", "ART. 1", "art_1"},
		{"normalized tokens", "Art 1", "art_1"},
		{"normalized with underscore", "art_2", "art_2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sec, err := store.Section(ctx, "DU/2023/1", tt.selector)
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, sec.ID)
		})
	}
}

func TestDocumentStore_Section_ExactIDWinsOverNormalized(t *testing.T) {
	store, _ := newTestDocStore(t, defaultDocConfig())
	ctx := context.Background()

	// Both sections normalize near each other; the exact id rule must win
	// before any normalization is attempted.
	text := "Art. 1\n\ntresc\n\nArt. 1a\n\ntresc\n"
	_, err := store.Load(ctx, "DU/2023/1", text)
	require.NoError(t, err)

	sec, err := store.Section(ctx, "DU/2023/1", "art_1a")
	require.NoError(t, err)
	assert.Equal(t, "art_1a", sec.ID)

	sec, err = store.Section(ctx, "DU/2023/1", "art_1")
	require.NoError(t, err)
	assert.Equal(t, "art_1", sec.ID)
}

func TestDocumentStore_Section_NotFound(t *testing.T) {
	store, _ := newTestDocStore(t, defaultDocConfig())
	ctx := context.Background()

	_, err := store.Load(ctx, "DU/2023/1", actText)
	require.NoError(t, err)

	_, err = store.Section(ctx, "DU/2023/1", "art_99")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSectionNotFound)

	// No fuzzy fallback: a prefix of a title must not match.
	_, err = store.Section(ctx, "DU/2023/1", "Zakr")
	assert.ErrorIs(t, err, domain.ErrSectionNotFound)
}

func TestDocumentStore_Section_NotLoaded(t *testing.T) {
	store, _ := newTestDocStore(t, defaultDocConfig())

	_, err := store.Section(context.Background(), "DU/1999/1", "art_1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotLoaded)
}

func TestDocumentStore_SearchIn(t *testing.T) {
	store, _ := newTestDocStore(t, defaultDocConfig())
	ctx := context.Background()

	text := "Art. 1. Podatek.\n\nPodatek dochodowy oraz podatek rolny.\n\nArt. 2. Inne.\n\nBez dopasowania.\n"
	_, err := store.Load(ctx, "DU/2023/1", text)
	require.NoError(t, err)

	hits, err := store.SearchIn(ctx, "DU/2023/1", "PODATEK")
	require.NoError(t, err)

	// Three case-insensitive matches, all within the first section,
	// reported in document order.
	require.Len(t, hits, 3)
	for _, hit := range hits {
		assert.Equal(t, "art_1_podatek", hit.SectionID)
		assert.Equal(t, "Art. 1. Podatek.", hit.SectionTitle)
		assert.Contains(t, strings.ToLower(hit.MatchedText), "podatek")
		assert.Contains(t, strings.ToLower(hit.Context), "podatek")
	}
	assert.Less(t, hits[0].Offset, hits[1].Offset)
	assert.Less(t, hits[1].Offset, hits[2].Offset)

	// Offsets address the document text.
	for _, hit := range hits {
		assert.Equal(t, strings.ToLower(hit.MatchedText),
			strings.ToLower(text[hit.Offset:hit.Offset+len("podatek")]))
	}
}

func TestDocumentStore_SearchIn_BoundedContext(t *testing.T) {
	store, _ := newTestDocStore(t, defaultDocConfig())
	ctx := context.Background()

	text := "Art. 1.\n\n" + strings.Repeat("a", 1000) + " igla " + strings.Repeat("b", 1000) + "\n"
	_, err := store.Load(ctx, "DU/2023/1", text)
	require.NoError(t, err)

	hits, err := store.SearchIn(ctx, "DU/2023/1", "igla")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.LessOrEqual(t, len(hits[0].Context), len("igla")+2*contextChars)
	assert.Contains(t, hits[0].Context, "igla")
}

func TestDocumentStore_SearchIn_WidthChangingFold(t *testing.T) {
	store, _ := newTestDocStore(t, defaultDocConfig())
	ctx := context.Background()

	// İ (U+0130) lowercases to a narrower encoding, shifting every byte
	// offset after it in the folded text.
	text := "Art. 1. Izby.\n\nİZBA rolnicza oraz izba skarbowa.\n"
	_, err := store.Load(ctx, "DU/2023/1", text)
	require.NoError(t, err)

	hits, err := store.SearchIn(ctx, "DU/2023/1", "izba")
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, "İZBA", hits[0].MatchedText)
	assert.Equal(t, "izba", hits[1].MatchedText)
	for _, hit := range hits {
		assert.Equal(t, hit.MatchedText, text[hit.Offset:hit.Offset+len(hit.MatchedText)])
	}
}

func TestDocumentStore_SearchIn_NoMatches(t *testing.T) {
	store, _ := newTestDocStore(t, defaultDocConfig())
	ctx := context.Background()

	_, err := store.Load(ctx, "DU/2023/1", actText)
	require.NoError(t, err)

	hits, err := store.SearchIn(ctx, "DU/2023/1", "niepodobne")
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestDocumentStore_SearchIn_EmptyQuery(t *testing.T) {
	store, _ := newTestDocStore(t, defaultDocConfig())
	ctx := context.Background()

	_, err := store.Load(ctx, "DU/2023/1", actText)
	require.NoError(t, err)

	_, err = store.SearchIn(ctx, "DU/2023/1", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDocumentStore_TTLExpiry(t *testing.T) {
	store, clock := newTestDocStore(t, defaultDocConfig())
	ctx := context.Background()

	_, err := store.Load(ctx, "DU/2023/1", actText)
	require.NoError(t, err)
	require.True(t, store.IsLoaded(ctx, "DU/2023/1"))

	clock.Advance(2*time.Hour + time.Second)

	assert.False(t, store.IsLoaded(ctx, "DU/2023/1"))
	_, err = store.TOC(ctx, "DU/2023/1")
	assert.ErrorIs(t, err, domain.ErrNotLoaded)
	assert.Empty(t, store.ListLoaded(ctx))
}

func TestDocumentStore_TTL_CountsFromLoadNotAccess(t *testing.T) {
	store, clock := newTestDocStore(t, defaultDocConfig())
	ctx := context.Background()

	_, err := store.Load(ctx, "DU/2023/1", actText)
	require.NoError(t, err)

	// Keep accessing; expiry is still measured from load time.
	for i := 0; i < 3; i++ {
		clock.Advance(30 * time.Minute)
		_, err = store.TOC(ctx, "DU/2023/1")
		require.NoError(t, err)
	}
	clock.Advance(31 * time.Minute)

	assert.False(t, store.IsLoaded(ctx, "DU/2023/1"))
}

func TestDocumentStore_LRUEviction_ByCount(t *testing.T) {
	config := defaultDocConfig()
	config.MaxDocuments = 2
	store, clock := newTestDocStore(t, config)
	ctx := context.Background()

	_, err := store.Load(ctx, "DU/2023/1", actText)
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = store.Load(ctx, "DU/2023/2", actText)
	require.NoError(t, err)
	clock.Advance(time.Minute)

	// Touch the first document so the second becomes the LRU victim.
	_, err = store.TOC(ctx, "DU/2023/1")
	require.NoError(t, err)
	clock.Advance(time.Minute)

	_, err = store.Load(ctx, "DU/2023/3", actText)
	require.NoError(t, err)

	assert.True(t, store.IsLoaded(ctx, "DU/2023/1"))
	assert.False(t, store.IsLoaded(ctx, "DU/2023/2"))
	assert.True(t, store.IsLoaded(ctx, "DU/2023/3"))
}

func TestDocumentStore_LRUEviction_BySize(t *testing.T) {
	config := defaultDocConfig()
	config.MaxDocumentBytes = 100
	config.MaxTotalBytes = 250
	store, clock := newTestDocStore(t, config)
	ctx := context.Background()

	text := strings.Repeat("x", 100)
	for i := 1; i <= 3; i++ {
		_, err := store.Load(ctx, fmt.Sprintf("DU/2023/%d", i), text)
		require.NoError(t, err)
		clock.Advance(time.Minute)
	}

	// 300 bytes exceeds the 250-byte budget; the oldest must go.
	assert.False(t, store.IsLoaded(ctx, "DU/2023/1"))
	assert.True(t, store.IsLoaded(ctx, "DU/2023/2"))
	assert.True(t, store.IsLoaded(ctx, "DU/2023/3"))
}

func TestDocumentStore_ListLoaded_DoesNotTouchRecency(t *testing.T) {
	config := defaultDocConfig()
	config.MaxDocuments = 2
	store, clock := newTestDocStore(t, config)
	ctx := context.Background()

	_, err := store.Load(ctx, "DU/2023/1", actText)
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = store.Load(ctx, "DU/2023/2", actText)
	require.NoError(t, err)
	clock.Advance(time.Minute)

	// Listing must not refresh DU/2023/1's recency.
	infos := store.ListLoaded(ctx)
	require.Len(t, infos, 2)
	assert.Equal(t, "DU/2023/1", infos[0].ELI)
	clock.Advance(time.Minute)

	_, err = store.Load(ctx, "DU/2023/3", actText)
	require.NoError(t, err)

	assert.False(t, store.IsLoaded(ctx, "DU/2023/1"))
	assert.True(t, store.IsLoaded(ctx, "DU/2023/2"))
}

func TestDocumentStore_Evict(t *testing.T) {
	store, _ := newTestDocStore(t, defaultDocConfig())
	ctx := context.Background()

	_, err := store.Load(ctx, "DU/2023/1", actText)
	require.NoError(t, err)

	store.Evict(ctx, "DU/2023/1")
	assert.False(t, store.IsLoaded(ctx, "DU/2023/1"))

	// Evicting an absent document is a no-op.
	store.Evict(ctx, "DU/2023/1")
}

func TestDocumentStore_Load_EmptyELI(t *testing.T) {
	store, _ := newTestDocStore(t, defaultDocConfig())

	_, err := store.Load(context.Background(), "", actText)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Art. 1.", "art_1"},
		{"Art. 2a. Definicje", "art_2a_definicje"},
		{"Rozdział 1", "rozdział_1"},
		{"  spaced   out  ", "spaced_out"},
		{"***", ""},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, slugify(tt.title))
		})
	}
}

func TestTruncateAtBoundary(t *testing.T) {
	text := "line one\nline two\nline three"

	got := truncateAtBoundary(text, 12)
	assert.Equal(t, "line one", got)

	// Text shorter than the limit is untouched.
	assert.Equal(t, text, truncateAtBoundary(text, 1000))

	// No line break before the limit: cut at a rune boundary.
	got = truncateAtBoundary("żółwie żółwie", 5)
	assert.LessOrEqual(t, len(got), 5)
	assert.True(t, strings.HasPrefix("żółwie", got))
}
