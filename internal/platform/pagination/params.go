package pagination

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultPageSize defines the fallback number of items returned when the client omits pageSize.
	DefaultPageSize = 12
	// DefaultMaxPageSize caps the supported pageSize to prevent unbounded queries.
	DefaultMaxPageSize = 48
	// DefaultSiblingCount is the number of pages shown on each side of the current page.
	DefaultSiblingCount = 1
	// DefaultBoundaryCount is the number of pages anchored at each end of the range.
	DefaultBoundaryCount = 1
)

// Params bundles the page-number paging values extracted from a request.
type Params struct {
	Page          int
	PageSize      int
	SiblingCount  int
	BoundaryCount int
}

// Options control how Parse behaves for a given handler layer.
type Options struct {
	DefaultPageSize int
	MaxPageSize     int
	SiblingCount    int
	BoundaryCount   int
}

var (
	ErrInvalidPage     = errors.New("pagination: invalid page")
	ErrInvalidPageSize = errors.New("pagination: invalid pageSize")
)

// FromRequest parses the supported query parameters from the supplied request.
func FromRequest(r *http.Request, opts Options) (Params, error) {
	if r == nil {
		return Params{}, errors.New("pagination: nil request")
	}
	return Parse(r.URL.Query(), opts)
}

// Parse consumes the provided query values and returns the normalised Params
// representation. A malformed value is an error; an out-of-range value is
// clamped, matching the clamping contract of the range builder.
func Parse(values url.Values, opts Options) (Params, error) {
	if values == nil {
		values = url.Values{}
	}

	pageSize, err := parsePageSize(values.Get("pageSize"), opts)
	if err != nil {
		return Params{}, err
	}

	page, err := parsePage(values.Get("page"))
	if err != nil {
		return Params{}, err
	}

	siblings := opts.SiblingCount
	if siblings < 0 {
		siblings = DefaultSiblingCount
	}
	boundaries := opts.BoundaryCount
	if boundaries < 0 {
		boundaries = DefaultBoundaryCount
	}

	return Params{
		Page:          page,
		PageSize:      pageSize,
		SiblingCount:  siblings,
		BoundaryCount: boundaries,
	}, nil
}

// Offset returns the zero-based item offset for the current page.
func (p Params) Offset() int {
	if p.Page <= 1 || p.PageSize <= 0 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

func parsePage(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: must be an integer", ErrInvalidPage)
	}
	if value < 1 {
		return 1, nil
	}
	return value, nil
}

func parsePageSize(raw string, opts Options) (int, error) {
	maxPageSize := opts.MaxPageSize
	if maxPageSize <= 0 {
		maxPageSize = DefaultMaxPageSize
	}

	defaultPageSize := opts.DefaultPageSize
	if defaultPageSize <= 0 {
		defaultPageSize = DefaultPageSize
	}
	if defaultPageSize > maxPageSize {
		defaultPageSize = maxPageSize
	}

	if strings.TrimSpace(raw) == "" {
		return defaultPageSize, nil
	}

	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: must be an integer", ErrInvalidPageSize)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%w: must be greater than zero", ErrInvalidPageSize)
	}
	if value > maxPageSize {
		value = maxPageSize
	}
	return value, nil
}

// Must ensures Params are always initialised with sensible defaults before use.
func Must(params Params) Params {
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.PageSize <= 0 {
		params.PageSize = DefaultPageSize
	}
	if params.SiblingCount < 0 {
		params.SiblingCount = DefaultSiblingCount
	}
	if params.BoundaryCount < 0 {
		params.BoundaryCount = DefaultBoundaryCount
	}
	return params
}
