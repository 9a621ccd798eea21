package repository

import (
	"context"
	"errors"

	"suratapi/internal/model"
)

// ErrStaleVersion is returned by LetterRepository.Update and Delete when the
// stored lock version no longer matches the one the caller read.
var ErrStaleVersion = errors.New("stale lock version")

// Sequence scopes.
const (
	ScopeAgenda   = "agenda"
	ScopeDocument = "document"
)

// SequenceKey identifies one atomic counter. Agenda counters are per unit only;
// document counters are per (unit, main-issue classification, year).
type SequenceKey struct {
	Scope     string
	UnitID    string
	IssueCode string
	Year      int
}

// AgendaKey is the counter key for a unit's agenda numbers.
func AgendaKey(unitID string) SequenceKey {
	return SequenceKey{Scope: ScopeAgenda, UnitID: unitID}
}

// NumberingRequest asks the repository to draw the next value of Key and render
// it into the letter's Number inside the same transaction that writes the letter.
type NumberingRequest struct {
	Key    SequenceKey
	Render func(seq int64) (string, error)
}

// LetterFilter narrows List queries. Zero values mean "any".
type LetterFilter struct {
	Kind      model.LetterKind
	UnitID    string
	Status    model.LetterStatus
	IssueCode string
	Year      int
}

// LetterRepository persists letters together with the chain, history and
// dispositions they own. Every write is atomic.
type LetterRepository interface {
	// Create inserts a letter, drawing its agenda number and, when numbering is
	// non-nil, its document number in the same transaction.
	Create(ctx context.Context, l *model.Letter, numbering *NumberingRequest) (*model.Letter, error)

	// FindByID returns a letter or sql.ErrNoRows.
	FindByID(ctx context.Context, id string) (*model.Letter, error)

	// List returns a paginated list of letters matching f.
	List(ctx context.Context, f LetterFilter, pq PageQuery) (*PageResult[model.Letter], error)

	// Update writes l if the stored lock version equals l.LockVersion, and
	// returns the stored letter with the bumped lock version. It returns
	// ErrStaleVersion on mismatch and sql.ErrNoRows if the letter is gone.
	Update(ctx context.Context, l *model.Letter, numbering *NumberingRequest) (*model.Letter, error)

	// Delete removes a letter under the same lock-version check as Update.
	Delete(ctx context.Context, id string, lockVersion int64) error
}
