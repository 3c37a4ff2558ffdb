package memory

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/acta-dev/acta-mcp/internal/core/domain"
	"github.com/acta-dev/acta-mcp/internal/core/ports/driven"
	"github.com/acta-dev/acta-mcp/internal/logger"
)

// Ensure ResultStore implements the interface.
var _ driven.ResultStore = (*ResultStore)(nil)

// dateLayout is the wire form of act dates.
const dateLayout = "2006-01-02"

// ResultStoreConfig holds the result store limits.
type ResultStoreConfig struct {
	// MaxSets is the maximum number of stored result sets.
	MaxSets int

	// TTL is how long a set stays retrievable, counted from creation.
	TTL time.Duration
}

// Validate checks the configured limits.
func (c ResultStoreConfig) Validate() error {
	if c.MaxSets < 1 {
		return fmt.Errorf("%w: max result sets must be >= 1, got %d", domain.ErrInvalidConfig, c.MaxSets)
	}
	if c.TTL <= 0 {
		return fmt.Errorf("%w: result set TTL must be > 0, got %s", domain.ErrInvalidConfig, c.TTL)
	}
	return nil
}

// storedSet wraps a result set with its creation sequence number, which
// fixes the List order and breaks LRU ties.
type storedSet struct {
	set *domain.ResultSet
	seq int
}

// ResultStore is an in-memory implementation of driven.ResultStore.
type ResultStore struct {
	mu      sync.Mutex
	config  ResultStoreConfig
	sets    map[string]*storedSet
	counter int

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// NewResultStore creates a new in-memory result store.
func NewResultStore(config ResultStoreConfig) (*ResultStore, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &ResultStore{
		config: config,
		sets:   make(map[string]*storedSet),
		now:    time.Now,
	}, nil
}

// Store creates a new immutable result set and returns its id.
func (s *ResultStore) Store(_ context.Context, records []domain.ActSummary, querySummary, parentID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storeLocked(records, querySummary, parentID), nil
}

func (s *ResultStore) storeLocked(records []domain.ActSummary, querySummary, parentID string) string {
	now := s.now()
	s.purgeExpiredLocked(now)
	for len(s.sets) >= s.config.MaxSets {
		s.evictLRULocked()
	}

	s.counter++
	id := fmt.Sprintf("rs_%d", s.counter)

	owned := make([]domain.ActSummary, len(records))
	copy(owned, records)

	s.sets[id] = &storedSet{
		seq: s.counter,
		set: &domain.ResultSet{
			ID:           id,
			Records:      owned,
			QuerySummary: querySummary,
			ParentID:     parentID,
			CreatedAt:    now,
			LastAccessed: now,
		},
	}
	logger.Debug("stored result set %s: %d records (%s)", id, len(owned), querySummary)
	return id
}

// Get returns the identified set, updating its recency.
func (s *ResultStore) Get(_ context.Context, id string) (*domain.ResultSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.getLocked(id)
	if err != nil {
		return nil, err
	}
	stored.set.LastAccessed = s.now()

	cp := *stored.set
	cp.Records = make([]domain.ActSummary, len(stored.set.Records))
	copy(cp.Records, stored.set.Records)
	return &cp, nil
}

// Filter applies spec to the identified set and persists the outcome as a
// new child set. The source set is never mutated.
func (s *ResultStore) Filter(_ context.Context, id string, spec domain.FilterSpec) (string, []domain.ActSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.getLocked(id)
	if err != nil {
		return "", nil, err
	}
	stored.set.LastAccessed = s.now()

	filtered, err := applyFilter(stored.set.Records, spec)
	if err != nil {
		return "", nil, err
	}

	summary := fmt.Sprintf("filter of %s: %s", id, spec.Summary())
	childID := s.storeLocked(filtered, summary, id)
	return childID, filtered, nil
}

// List returns accounting metadata for all live sets in creation order.
// A pure read: it does not update LRU recency.
func (s *ResultStore) List(_ context.Context) []domain.ResultSetInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked(s.now())

	ordered := make([]*storedSet, 0, len(s.sets))
	for _, stored := range s.sets {
		ordered = append(ordered, stored)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].seq < ordered[j].seq })

	infos := make([]domain.ResultSetInfo, len(ordered))
	for i, stored := range ordered {
		infos[i] = domain.ResultSetInfo{
			ID:           stored.set.ID,
			QuerySummary: stored.set.QuerySummary,
			RecordCount:  len(stored.set.Records),
			CreatedAt:    stored.set.CreatedAt,
		}
	}
	return infos
}

func (s *ResultStore) getLocked(id string) (*storedSet, error) {
	stored, ok := s.sets[id]
	if !ok {
		return nil, fmt.Errorf("result set %s: %w", id, domain.ErrNotFound)
	}
	if s.expiredLocked(stored, s.now()) {
		delete(s.sets, id)
		return nil, fmt.Errorf("result set %s: %w", id, domain.ErrNotFound)
	}
	return stored, nil
}

func (s *ResultStore) expiredLocked(stored *storedSet, now time.Time) bool {
	return !now.Before(stored.set.CreatedAt.Add(s.config.TTL))
}

func (s *ResultStore) purgeExpiredLocked(now time.Time) {
	for id, stored := range s.sets {
		if s.expiredLocked(stored, now) {
			delete(s.sets, id)
		}
	}
}

// evictLRULocked removes the least recently accessed set, breaking ties
// by creation order.
func (s *ResultStore) evictLRULocked() {
	var victim *storedSet
	for _, stored := range s.sets {
		if victim == nil ||
			stored.set.LastAccessed.Before(victim.set.LastAccessed) ||
			(stored.set.LastAccessed.Equal(victim.set.LastAccessed) && stored.seq < victim.seq) {
			victim = stored
		}
	}
	if victim == nil {
		return
	}
	logger.Debug("evicting LRU result set %s", victim.set.ID)
	delete(s.sets, victim.set.ID)
}

// applyFilter runs the filter pipeline in its fixed order: equality
// filters, date range, regex pattern, sort, limit.
func applyFilter(records []domain.ActSummary, spec domain.FilterSpec) ([]domain.ActSummary, error) {
	filtered := make([]domain.ActSummary, len(records))
	copy(filtered, records)

	filtered = applyEquality(filtered, spec)

	var err error
	if spec.DateField != "" && (spec.DateFrom != "" || spec.DateTo != "") {
		filtered, err = applyDateRange(filtered, spec)
		if err != nil {
			return nil, err
		}
	}

	if spec.Pattern != "" {
		filtered, err = applyPattern(filtered, spec)
		if err != nil {
			return nil, err
		}
	}

	if spec.SortBy != "" {
		if err := sortRecords(filtered, spec.SortBy, spec.SortDesc); err != nil {
			return nil, err
		}
	}

	if spec.Limit > 0 && len(filtered) > spec.Limit {
		filtered = filtered[:spec.Limit]
	}
	return filtered, nil
}

// applyEquality excludes records failing any supplied equality filter.
func applyEquality(records []domain.ActSummary, spec domain.FilterSpec) []domain.ActSummary {
	if spec.Type == "" && spec.Status == "" && spec.Year == 0 {
		return records
	}
	kept := records[:0]
	for _, r := range records {
		if spec.Type != "" && r.Type != spec.Type {
			continue
		}
		if spec.Status != "" && r.Status != spec.Status {
			continue
		}
		if spec.Year != 0 && r.Year != spec.Year {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// applyDateRange keeps records whose named date field parses and falls
// within the inclusive [from, to] range. Records with a missing or
// unparseable date are excluded.
func applyDateRange(records []domain.ActSummary, spec domain.FilterSpec) ([]domain.ActSummary, error) {
	if _, ok := (domain.ActSummary{}).DateField(spec.DateField); !ok {
		return nil, fmt.Errorf("%w: unknown date field %q", domain.ErrInvalidInput, spec.DateField)
	}

	var from, to time.Time
	var err error
	if spec.DateFrom != "" {
		if from, err = time.Parse(dateLayout, spec.DateFrom); err != nil {
			return nil, fmt.Errorf("%w: date_from %q: expected YYYY-MM-DD", domain.ErrInvalidInput, spec.DateFrom)
		}
	}
	if spec.DateTo != "" {
		if to, err = time.Parse(dateLayout, spec.DateTo); err != nil {
			return nil, fmt.Errorf("%w: date_to %q: expected YYYY-MM-DD", domain.ErrInvalidInput, spec.DateTo)
		}
	}

	kept := records[:0]
	for _, r := range records {
		raw, _ := r.DateField(spec.DateField)
		if raw == "" {
			continue
		}
		value, err := time.Parse(dateLayout, raw)
		if err != nil {
			continue
		}
		if !from.IsZero() && value.Before(from) {
			continue
		}
		if !to.IsZero() && value.After(to) {
			continue
		}
		kept = append(kept, r)
	}
	return kept, nil
}

// applyPattern keeps records whose named text field matches the regex.
// The pattern is tested against exactly one field; OR semantics exist
// only through alternation inside the pattern itself.
func applyPattern(records []domain.ActSummary, spec domain.FilterSpec) ([]domain.ActSummary, error) {
	field := spec.PatternField
	if field == "" {
		field = domain.FieldTitle
	}
	if _, ok := (domain.ActSummary{}).TextField(field); !ok {
		return nil, fmt.Errorf("%w: unknown text field %q", domain.ErrInvalidInput, field)
	}

	re, err := regexp.Compile("(?i)" + spec.Pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid pattern %q: %v", domain.ErrInvalidInput, spec.Pattern, err)
	}

	kept := records[:0]
	for _, r := range records {
		value, _ := r.TextField(field)
		if value != "" && re.MatchString(value) {
			kept = append(kept, r)
		}
	}
	return kept, nil
}

// sortRecords sorts in place by the named field, ascending unless desc.
// The sort is stable with respect to the original record order.
func sortRecords(records []domain.ActSummary, field string, desc bool) error {
	var less func(a, b domain.ActSummary) bool
	switch field {
	case domain.FieldYear:
		less = func(a, b domain.ActSummary) bool { return a.Year < b.Year }
	case domain.FieldPos:
		less = func(a, b domain.ActSummary) bool { return a.Pos < b.Pos }
	case domain.FieldTitle, domain.FieldELI, domain.FieldType, domain.FieldStatus, domain.FieldPublisher:
		less = func(a, b domain.ActSummary) bool {
			av, _ := a.TextField(field)
			bv, _ := b.TextField(field)
			return av < bv
		}
	case domain.FieldPromulgationDate, domain.FieldEffectiveDate:
		less = func(a, b domain.ActSummary) bool {
			// ISO dates order lexically; missing values sort first.
			av, _ := a.DateField(field)
			bv, _ := b.DateField(field)
			return av < bv
		}
	default:
		return fmt.Errorf("%w: unknown sort field %q", domain.ErrInvalidInput, field)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if desc {
			return less(records[j], records[i])
		}
		return less(records[i], records[j])
	})
	return nil
}
