package models

import (
	"fmt"
	"strings"
)

// DefaultSearchLimit is applied when a search request omits the limit.
const DefaultSearchLimit = 5

// MaxSearchLimit caps how many results a single request may ask for.
const MaxSearchLimit = 100

// SearchQuery represents a search request.
type SearchQuery struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// Validate ensures the query has valid fields and sets defaults.
// Returns an error if the query is empty or whitespace-only; otherwise
// normalizes the limit. Validation happens before any network call.
func (q *SearchQuery) Validate() error {
	if strings.TrimSpace(q.Query) == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if q.Limit <= 0 {
		q.Limit = DefaultSearchLimit
	}
	if q.Limit > MaxSearchLimit {
		q.Limit = MaxSearchLimit
	}
	return nil
}
