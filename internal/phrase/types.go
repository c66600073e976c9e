package phrase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrEmptyText       = errors.New("phrase text is empty")
)

// Category is the closed set of phrase lists.
type Category string

const (
	Filler Category = "filler"
	Quotes Category = "quotes"
)

// Categories lists every category in the order dispatch concatenates them.
var Categories = []Category{Filler, Quotes}

// legacy list names from the first deployment, kept so old operator habits
// and seed files keep working
var aliases = map[string]Category{
	"filler": Filler,
	"quotes": Quotes,
	"хуйня":  Filler,
	"цитаты": Quotes,
}

func ParseCategory(s string) (Category, error) {
	c, ok := aliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

func (c Category) Valid() bool {
	return c == Filler || c == Quotes
}

type Phrase struct {
	ID        int64
	Category  Category
	Text      string
	CreatedAt time.Time
}

// Store is the phrase persistence contract. ListAll returns phrases oldest
// first; MostRecent returns nil when the category is empty.
type Store interface {
	Insert(ctx context.Context, c Category, text string) (Phrase, error)
	MostRecent(ctx context.Context, c Category) (*Phrase, error)
	DeleteByID(ctx context.Context, id int64) error
	ListAll(ctx context.Context, c Category) ([]Phrase, error)
}

// Snapshot is every phrase grouped by category, as written by backups.
type Snapshot struct {
	TakenAt time.Time `yaml:"taken_at"`
	Filler  []string  `yaml:"filler"`
	Quotes  []string  `yaml:"quotes"`
}
