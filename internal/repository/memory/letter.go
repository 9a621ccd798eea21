// Package memory holds mutex-guarded in-process repositories. They honour the
// same atomicity and lock-version contract as the postgres implementations and
// back the `serve --store memory` mode and the service tests.
package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"suratapi/internal/model"
	"suratapi/internal/repository"
)

// LetterStore is an in-memory repository.LetterRepository.
type LetterStore struct {
	mu       sync.Mutex
	loc      *time.Location
	letters  map[string]*model.Letter
	counters map[repository.SequenceKey]int64
	numbers  map[string]string // number -> letter id
}

// NewLetterStore creates a new LetterStore.
func NewLetterStore(loc *time.Location) *LetterStore {
	if loc == nil {
		loc = time.UTC
	}
	return &LetterStore{
		loc:      loc,
		letters:  make(map[string]*model.Letter),
		counters: make(map[repository.SequenceKey]int64),
		numbers:  make(map[string]string),
	}
}

var _ repository.LetterRepository = (*LetterStore)(nil)

func (s *LetterStore) Create(_ context.Context, l *model.Letter, numbering *repository.NumberingRequest) (*model.Letter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.letters[l.ID]; ok {
		return nil, repository.ErrDuplicate
	}
	out := l.Clone()
	out.LockVersion = 1

	saved := s.saveCounters()
	out.AgendaNumber = s.next(repository.AgendaKey(out.UnitID))
	if err := s.assign(out, numbering); err != nil {
		s.counters = saved
		return nil, err
	}
	s.put(out)
	return out.Clone(), nil
}

func (s *LetterStore) FindByID(_ context.Context, id string) (*model.Letter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.letters[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return l.Clone(), nil
}

func (s *LetterStore) List(_ context.Context, f repository.LetterFilter, pq repository.PageQuery) (*repository.PageResult[model.Letter], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]*model.Letter, 0, len(s.letters))
	for _, l := range s.letters {
		if f.Kind != "" && l.Kind != f.Kind ||
			f.UnitID != "" && l.UnitID != f.UnitID ||
			f.Status != "" && l.Status != f.Status ||
			f.IssueCode != "" && l.Classification.MainIssueCode != f.IssueCode ||
			f.Year != 0 && l.Year(s.loc) != f.Year {
			continue
		}
		matched = append(matched, l)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	items := make([]model.Letter, 0)
	for _, l := range page(matched, pq) {
		items = append(items, *l.Clone())
	}
	return &repository.PageResult[model.Letter]{Items: items, Total: len(matched)}, nil
}

func (s *LetterStore) Update(_ context.Context, l *model.Letter, numbering *repository.NumberingRequest) (*model.Letter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.letters[l.ID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if cur.LockVersion != l.LockVersion {
		return nil, repository.ErrStaleVersion
	}
	out := l.Clone()
	saved := s.saveCounters()
	if err := s.assign(out, numbering); err != nil {
		s.counters = saved
		return nil, err
	}
	out.LockVersion = cur.LockVersion + 1
	s.release(cur)
	s.put(out)
	return out.Clone(), nil
}

func (s *LetterStore) Delete(_ context.Context, id string, lockVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.letters[id]
	if !ok {
		return sql.ErrNoRows
	}
	if cur.LockVersion != lockVersion {
		return repository.ErrStaleVersion
	}
	s.release(cur)
	delete(s.letters, id)
	return nil
}

func (s *LetterStore) next(key repository.SequenceKey) int64 {
	s.counters[key]++
	return s.counters[key]
}

func (s *LetterStore) assign(l *model.Letter, numbering *repository.NumberingRequest) error {
	if numbering == nil {
		return nil
	}
	num, err := numbering.Render(s.next(numbering.Key))
	if err != nil {
		return err
	}
	if owner, taken := s.numbers[num]; taken && owner != l.ID {
		return repository.ErrDuplicate
	}
	l.Number = &num
	return nil
}

func (s *LetterStore) put(l *model.Letter) {
	s.letters[l.ID] = l
	// Senders' numbers on incoming letters are not ours to keep unique.
	if l.Number != nil && l.Kind != model.KindIncoming {
		s.numbers[*l.Number] = l.ID
	}
}

func (s *LetterStore) release(l *model.Letter) {
	if l.Number != nil && s.numbers[*l.Number] == l.ID {
		delete(s.numbers, *l.Number)
	}
}

// saveCounters copies the counters so a failed write can roll them back.
func (s *LetterStore) saveCounters() map[repository.SequenceKey]int64 {
	c := make(map[repository.SequenceKey]int64, len(s.counters))
	for k, v := range s.counters {
		c[k] = v
	}
	return c
}

func page[T any](items []T, pq repository.PageQuery) []T {
	if pq.Offset >= len(items) {
		return nil
	}
	items = items[pq.Offset:]
	if pq.Limit > 0 && pq.Limit < len(items) {
		items = items[:pq.Limit]
	}
	return items
}
