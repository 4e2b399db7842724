// Package feed composes the paginated video listing: filter, then sort,
// then skip and take.
package feed

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sah-lishi/backend-journey/internal/apperr"
	"github.com/sah-lishi/backend-journey/internal/models"
)

const (
	// DefaultLimit is the page size used when the caller sends none.
	DefaultLimit = 10
	// MaxLimit caps the page size a caller may request.
	MaxLimit = 100
)

// sortColumns is the only source of column names in the ORDER BY clause.
var sortColumns = map[string]string{
	"createdAt":   "created_at",
	"views":       "views",
	"duration":    "duration",
	"title":       "title",
	"isPublished": "is_published",
}

const defaultSortColumn = "created_at"

// Query is the caller-supplied listing request.
type Query struct {
	Title    string
	OwnerID  string
	MinViews int64
	SortBy   string
	SortType string
	Page     int
	Limit    int
}

// Plan is a validated Query rendered as SQL fragments. Where and Order never
// contain caller text; every value travels in Args.
type Plan struct {
	Where      string
	Order      string
	Args       []any
	Page       int
	Limit      int
	SortColumn string
	Descending bool
}

// Offset is the number of rows skipped before the page window.
func (p Plan) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Tail renders the clause that follows "FROM videos". The LIMIT and OFFSET
// placeholders continue after Args.
func (p Plan) Tail() (string, []any) {
	n := len(p.Args)
	args := append(append([]any(nil), p.Args...), p.Limit, p.Offset())
	clause := fmt.Sprintf("WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d", p.Where, p.Order, n+1, n+2)
	return clause, args
}

// NormalizePage clamps a 1-indexed page and a positive page size. The page
// is capped so that its OFFSET always fits in an int; pages past the end of
// the data come back empty.
func NormalizePage(page, limit int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if page < 1 {
		page = 1
	}
	if maxPage := math.MaxInt / limit; page > maxPage {
		page = maxPage
	}
	return page, limit
}

// ParsePage reads page and limit from raw query values. Non-numeric input
// is treated as absent.
func ParsePage(rawPage, rawLimit string) (int, int) {
	page, _ := strconv.Atoi(strings.TrimSpace(rawPage))
	limit, _ := strconv.Atoi(strings.TrimSpace(rawLimit))
	return NormalizePage(page, limit)
}

// ResolveSort maps sortBy onto the allow-list and reports the direction.
func ResolveSort(sortBy, sortType string) (string, bool) {
	column, ok := sortColumns[strings.TrimSpace(sortBy)]
	if !ok {
		column = defaultSortColumn
	}
	return column, strings.EqualFold(strings.TrimSpace(sortType), "desc")
}

// Build validates q and renders it as a Plan.
func Build(q Query) (Plan, error) {
	owner := strings.TrimSpace(q.OwnerID)
	if owner != "" && !models.ValidID(owner) {
		return Plan{}, apperr.InvalidArgument("invalid userId")
	}
	if q.MinViews < 0 {
		q.MinViews = 0
	}

	var (
		conds []string
		args  []any
	)
	bind := func(cond string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	conds = append(conds, "is_published = TRUE")
	bind("views >= $%d", q.MinViews)
	if title := strings.TrimSpace(q.Title); title != "" {
		bind("title ILIKE $%d", "%"+escapeLike(title)+"%")
	}
	if owner != "" {
		bind("owner_id = $%d", owner)
	}

	column, desc := ResolveSort(q.SortBy, q.SortType)
	direction := "ASC"
	if desc {
		direction = "DESC"
	}

	page, limit := NormalizePage(q.Page, q.Limit)

	return Plan{
		Where:      strings.Join(conds, " AND "),
		Order:      fmt.Sprintf("%s %s, id %s", column, direction, direction),
		Args:       args,
		Page:       page,
		Limit:      limit,
		SortColumn: column,
		Descending: desc,
	}, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
