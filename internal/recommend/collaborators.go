package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/abhisek/quizmind/internal/validate"
)

// Catalog looks up content. Content returns an item with Available false
// for unknown ids.
type Catalog interface {
	Content(ctx context.Context, id string) (Content, error)
	List(ctx context.Context) ([]Content, error)
}

// Peers finds learners similar to a user and what worked for them.
type Peers interface {
	FindSimilarUsers(ctx context.Context, userID string, limit int) ([]string, error)

	// Successes returns content id to success rate in [0, 1] across users.
	Successes(ctx context.Context, userIDs []string) (map[string]float64, error)
}

// TrendingItem is a popular content id with a popularity score in [0, 1].
type TrendingItem struct {
	ContentID string  `json:"contentId"`
	Score     float64 `json:"score"`
}

// Trending reports popular content for a subject.
type Trending interface {
	Trending(ctx context.Context, subject string, window time.Duration) ([]TrendingItem, error)
}

// NoPeers is a Peers with no similar users.
type NoPeers struct{}

func (NoPeers) FindSimilarUsers(context.Context, string, int) ([]string, error) { return nil, nil }

func (NoPeers) Successes(context.Context, []string) (map[string]float64, error) { return nil, nil }

// NoTrending is a Trending with nothing popular.
type NoTrending struct{}

func (NoTrending) Trending(context.Context, string, time.Duration) ([]TrendingItem, error) {
	return nil, nil
}

// StaticCatalog is an in-memory catalog. It is read-only after creation
// and safe for concurrent use.
type StaticCatalog struct {
	items []Content
	index map[string]int
}

// NewStaticCatalog builds a catalog. Later duplicates of an id replace
// earlier ones in place.
func NewStaticCatalog(items []Content) *StaticCatalog {
	c := &StaticCatalog{index: make(map[string]int, len(items))}
	for _, it := range items {
		if i, dup := c.index[it.ID]; dup {
			c.items[i] = it
			continue
		}
		c.index[it.ID] = len(c.items)
		c.items = append(c.items, it)
	}
	return c
}

func (c *StaticCatalog) Content(_ context.Context, id string) (Content, error) {
	i, ok := c.index[id]
	if !ok {
		return Content{ID: id, Available: false}, nil
	}
	return c.items[i], nil
}

func (c *StaticCatalog) List(context.Context) ([]Content, error) {
	out := make([]Content, len(c.items))
	copy(out, c.items)
	return out, nil
}

// CatalogSchema validates catalog files.
var CatalogSchema = &validate.Schema{
	Name: "catalog-v1",
	Definition: map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":     "object",
			"required": []any{"id", "topic", "available"},
			"properties": map[string]any{
				"id":            map[string]any{"type": "string", "minLength": 1},
				"topic":         map[string]any{"type": "string"},
				"subject":       map[string]any{"type": "string"},
				"tags":          map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"format":        map[string]any{"type": "string"},
				"difficulty":    map[string]any{"type": "number", "minimum": 0, "maximum": 1},
				"quality":       map[string]any{"type": "number", "minimum": 0, "maximum": 1},
				"accessibility": map[string]any{"type": "number", "minimum": 0, "maximum": 1},
				"available":     map[string]any{"type": "boolean"},
				"premium":       map[string]any{"type": "boolean"},
				"minAge":        map[string]any{"type": "integer", "minimum": 0},
				"minutes":       map[string]any{"type": "integer", "minimum": 0},
			},
		},
	},
}

// ParseCatalog validates and decodes a JSON catalog file.
func ParseCatalog(data []byte) (*StaticCatalog, error) {
	if err := validate.Document(CatalogSchema, data); err != nil {
		return nil, err
	}
	var items []Content
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return NewStaticCatalog(items), nil
}
