package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acta-dev/acta-mcp/internal/adapters/driven/storage/memory"
	"github.com/acta-dev/acta-mcp/internal/core/domain"
	"github.com/acta-dev/acta-mcp/internal/indexer/markdown"
)

const sampleActText = `Art. 1. Zakres ustawy.
Ustawa określa zasady poboru podatku.

Art. 2. Definicje.
Ilekroć w ustawie mowa o podatku, rozumie się przez to podatek dochodowy.
`

func newDocStore(t *testing.T) *memory.DocumentStore {
	t.Helper()
	store, err := memory.NewDocumentStore(memory.DocStoreConfig{
		MaxDocuments:     5,
		MaxTotalBytes:    1 << 20,
		MaxDocumentBytes: 1 << 20,
		TTL:              time.Hour,
	}, markdown.New())
	require.NoError(t, err)
	return store
}

func TestDocumentService_Load(t *testing.T) {
	api := &fakeActAPI{
		fetchFn: func(_ context.Context, eli string) (string, error) {
			assert.Equal(t, "DU/2023/100", eli)
			return sampleActText, nil
		},
	}
	svc := NewDocumentService(api, newDocStore(t))
	ctx := context.Background()

	info, err := svc.Load(ctx, "DU/2023/100")
	require.NoError(t, err)

	assert.Equal(t, "DU/2023/100", info.ELI)
	assert.Equal(t, len(sampleActText), info.SizeBytes)
	assert.Equal(t, 2, info.SectionCount)
	assert.False(t, info.Truncated)
}

func TestDocumentService_Load_SkipsFetchWhenLoaded(t *testing.T) {
	api := &fakeActAPI{
		fetchFn: func(context.Context, string) (string, error) {
			return sampleActText, nil
		},
	}
	svc := NewDocumentService(api, newDocStore(t))
	ctx := context.Background()

	first, err := svc.Load(ctx, "DU/2023/100")
	require.NoError(t, err)

	second, err := svc.Load(ctx, "DU/2023/100")
	require.NoError(t, err)

	assert.Equal(t, 1, api.fetchCalls)
	assert.Equal(t, first, second)
}

func TestDocumentService_Load_EmptyELI(t *testing.T) {
	svc := NewDocumentService(&fakeActAPI{}, newDocStore(t))

	_, err := svc.Load(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDocumentService_Load_FetchError(t *testing.T) {
	api := &fakeActAPI{
		fetchFn: func(context.Context, string) (string, error) {
			return "", domain.ErrNotFound
		},
	}
	svc := NewDocumentService(api, newDocStore(t))
	ctx := context.Background()

	_, err := svc.Load(ctx, "DU/1900/1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, svc.ListLoaded(ctx))
}

func TestDocumentService_SectionAccess(t *testing.T) {
	api := &fakeActAPI{
		fetchFn: func(context.Context, string) (string, error) {
			return sampleActText, nil
		},
	}
	svc := NewDocumentService(api, newDocStore(t))
	ctx := context.Background()

	_, err := svc.Load(ctx, "DU/2023/100")
	require.NoError(t, err)

	toc, err := svc.TOC(ctx, "DU/2023/100")
	require.NoError(t, err)
	require.Len(t, toc, 2)
	assert.Equal(t, "Art. 1. Zakres ustawy.", toc[0].Title)

	section, err := svc.Section(ctx, "DU/2023/100", "Art. 2. Definicje.")
	require.NoError(t, err)
	assert.Contains(t, section.Body, "podatek dochodowy")

	hits, err := svc.SearchIn(ctx, "DU/2023/100", "podatku")
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, toc[0].ID, hits[0].SectionID)
}

func TestDocumentService_AccessUnloadedAct(t *testing.T) {
	svc := NewDocumentService(&fakeActAPI{}, newDocStore(t))
	ctx := context.Background()

	_, err := svc.TOC(ctx, "DU/2023/100")
	assert.ErrorIs(t, err, domain.ErrNotLoaded)

	_, err = svc.Section(ctx, "DU/2023/100", "art_1")
	assert.ErrorIs(t, err, domain.ErrNotLoaded)

	_, err = svc.SearchIn(ctx, "DU/2023/100", "podatek")
	assert.ErrorIs(t, err, domain.ErrNotLoaded)
}

func TestDocumentService_EvictAndList(t *testing.T) {
	api := &fakeActAPI{
		fetchFn: func(context.Context, string) (string, error) {
			return sampleActText, nil
		},
	}
	svc := NewDocumentService(api, newDocStore(t))
	ctx := context.Background()

	_, err := svc.Load(ctx, "DU/2023/100")
	require.NoError(t, err)
	_, err = svc.Load(ctx, "DU/2021/50")
	require.NoError(t, err)

	infos := svc.ListLoaded(ctx)
	require.Len(t, infos, 2)

	svc.Evict(ctx, "DU/2023/100")

	infos = svc.ListLoaded(ctx)
	require.Len(t, infos, 1)
	assert.Equal(t, "DU/2021/50", infos[0].ELI)

	// Eviction forces a fresh fetch on the next load.
	_, err = svc.Load(ctx, "DU/2023/100")
	require.NoError(t, err)
	assert.Equal(t, 3, api.fetchCalls)
}
