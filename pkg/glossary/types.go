package glossary

import (
	"time"

	"github.com/google/uuid"
)

// MaxTermLength is the maximum accepted length of a term after sanitization.
const MaxTermLength = 255

// Entry is a glossary term/definition pair, the root persisted object.
// Likes, LikesCount and Who are derived at read time: likes come from the
// likes table, Who is the author of the most recent history record.
type Entry struct {
	ID         string    `json:"id"`
	Term       string    `json:"term"`
	Definition string    `json:"definition"`
	Revision   int       `json:"revision"`
	Likes      []Like    `json:"likes"`
	LikesCount int       `json:"likes_count"`
	Who        *string   `json:"who"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewEntry builds a fresh entry at revision 0 with a generated id.
func NewEntry(term, definition string) *Entry {
	now := time.Now().UTC()
	return &Entry{
		ID:         uuid.NewString(),
		Term:       term,
		Definition: definition,
		Revision:   0,
		Likes:      []Like{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// WithLikes returns a copy of the entry with the given likes attached.
func (e Entry) WithLikes(likes []Like) Entry {
	if likes == nil {
		likes = []Like{}
	}
	e.Likes = likes
	e.LikesCount = len(likes)
	return e
}

// HistoryRecord is an immutable snapshot of an entry's content taken at
// write time. One record is appended per successful create or update.
type HistoryRecord struct {
	ID         string    `json:"id"`
	GlossaryID string    `json:"glossary_id"`
	Term       string    `json:"term"`
	Definition string    `json:"definition"`
	Revision   int       `json:"revision"`
	Who        *string   `json:"who"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewHistoryRecord snapshots the given entry content.
func NewHistoryRecord(entry *Entry, who *string) *HistoryRecord {
	return &HistoryRecord{
		ID:         uuid.NewString(),
		GlossaryID: entry.ID,
		Term:       entry.Term,
		Definition: entry.Definition,
		Revision:   entry.Revision,
		Who:        who,
		CreatedAt:  time.Now().UTC(),
	}
}

// Like is an attributed or anonymous favorite marker on an entry. The same
// user may like an entry repeatedly; each like is a separate row.
type Like struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Who       *string   `json:"who"`
}

// NewLike builds a like with a generated id.
func NewLike(who *string) *Like {
	return &Like{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Who:       who,
	}
}

// EntryRequest is the JSON payload for create and update operations.
type EntryRequest struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// Normalize strips HTML markup and surrounding whitespace from both fields.
// Definitions may be rendered as rich text by a client, so stored values
// must never carry markup.
func (r *EntryRequest) Normalize() {
	r.Term = CleanString(r.Term)
	r.Definition = CleanString(r.Definition)
}

// Validate checks field constraints after normalization.
func (r *EntryRequest) Validate() error {
	if r.Term == "" {
		return NewInvalidInput("term is required")
	}
	if len(r.Term) > MaxTermLength {
		return NewInvalidInput("term must be at most 255 characters")
	}
	if r.Definition == "" {
		return NewInvalidInput("definition is required")
	}
	return nil
}
