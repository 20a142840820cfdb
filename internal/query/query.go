// Package query turns list request parameters into a ProductQuery.
// Filter, sort and include names are closed sets; anything else is rejected.
package query

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/Skotchmaster/catalog_api/internal/util"
	"github.com/Skotchmaster/catalog_api/internal/validate"
)

const (
	FilterCategory = "category"
	FilterPriceMin = "price_min"
	FilterPriceMax = "price_max"
	FilterSearch   = "search"
	FilterTrashed  = "trashed"

	IncludeCreator = "creator"

	TrashedWith = "with"
	TrashedOnly = "only"
)

var allowedFilters = map[string]bool{
	FilterCategory: true,
	FilterPriceMin: true,
	FilterPriceMax: true,
	FilterSearch:   true,
	FilterTrashed:  true,
}

// sort key -> column
var allowedSorts = map[string]string{
	"price":      "price",
	"stock":      "stock",
	"title":      "title",
	"created_at": "created_at",
}

var allowedIncludes = map[string]bool{
	IncludeCreator: true,
}

type Filters struct {
	Category *string
	PriceMin *float64
	PriceMax *float64
	Search   *string
	Trashed  string
}

type Sort struct {
	Column string
	Desc   bool
}

type ProductQuery struct {
	Filters        Filters
	Sort           *Sort
	Page           int
	PerPage        int
	IncludeCreator bool
}

func (q ProductQuery) Offset() int {
	off, _ := util.Calculate(q.Page, q.PerPage)
	return off
}

func Default() ProductQuery {
	return ProductQuery{Page: 1, PerPage: util.DefaultPerPage}
}

// Parse reads page, per_page, filter[...], sort and include. Other keys are
// ignored. Every problem found is reported in a single *validate.Error.
func Parse(values url.Values) (ProductQuery, error) {
	q := Default()
	errs := map[string]string{}

	if v := values.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs["page"] = "Must be an integer."
		} else if n > util.MaxPage {
			errs["page"] = fmt.Sprintf("Must not be greater than %d.", util.MaxPage)
		} else if n > 1 {
			q.Page = n
		}
	}

	if v := values.Get("per_page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs["per_page"] = "Must be an integer."
		} else {
			q.PerPage = util.ClampPerPage(n)
		}
	}

	for _, key := range sortedKeys(values) {
		name, ok := filterName(key)
		if !ok {
			continue
		}
		field := "filter." + name
		if !allowedFilters[name] {
			errs[field] = "Filter is not allowed."
			continue
		}
		raw := strings.TrimSpace(values.Get(key))
		if raw == "" {
			continue
		}
		switch name {
		case FilterCategory:
			q.Filters.Category = &raw
		case FilterSearch:
			q.Filters.Search = &raw
		case FilterPriceMin, FilterPriceMax:
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				errs[field] = "Must be a number."
				continue
			}
			if name == FilterPriceMin {
				q.Filters.PriceMin = &f
			} else {
				q.Filters.PriceMax = &f
			}
		case FilterTrashed:
			if raw != TrashedWith && raw != TrashedOnly {
				errs[field] = "Must be one of: with, only."
				continue
			}
			q.Filters.Trashed = raw
		}
	}

	if v := strings.TrimSpace(values.Get("sort")); v != "" {
		s, msg := parseSort(v)
		if msg != "" {
			errs["sort"] = msg
		} else {
			q.Sort = s
		}
	}

	if inc, msg := parseInclude(values.Get("include")); msg != "" {
		errs["include"] = msg
	} else {
		q.IncludeCreator = inc
	}

	if len(errs) > 0 {
		return q, &validate.Error{Errors: errs}
	}
	return q, nil
}

// IncludesCreator reads only the include parameter, for single-product reads.
func IncludesCreator(values url.Values) (bool, error) {
	inc, msg := parseInclude(values.Get("include"))
	if msg != "" {
		return false, validate.Field("include", msg)
	}
	return inc, nil
}

func parseInclude(v string) (bool, string) {
	creator := false
	for _, inc := range strings.Split(v, ",") {
		inc = strings.TrimSpace(inc)
		if inc == "" {
			continue
		}
		if !allowedIncludes[inc] {
			return false, "Include is not allowed: " + inc + "."
		}
		creator = creator || inc == IncludeCreator
	}
	return creator, ""
}

func parseSort(v string) (*Sort, string) {
	if strings.Contains(v, ",") {
		return nil, "Only one sort key is allowed."
	}
	desc := strings.HasPrefix(v, "-")
	key := strings.TrimPrefix(v, "-")
	col, ok := allowedSorts[key]
	if !ok {
		return nil, "Sort is not allowed: " + key + "."
	}
	return &Sort{Column: col, Desc: desc}, ""
}

func filterName(key string) (string, bool) {
	if key == "filter" {
		return "", true
	}
	if !strings.HasPrefix(key, "filter[") || !strings.HasSuffix(key, "]") {
		return "", false
	}
	return key[len("filter[") : len(key)-1], true
}

func sortedKeys(values url.Values) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EscapeLike escapes LIKE metacharacters using backslash.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
