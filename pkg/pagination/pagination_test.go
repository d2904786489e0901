package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func params(t *testing.T, query string) Params {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/"+query, nil)
	rec := httptest.NewRecorder()
	return FromContext(e.NewContext(req, rec))
}

func TestFromContext(t *testing.T) {
	cases := []struct {
		query      string
		limit, off int
	}{
		{"", DefaultLimit, 0},
		{"?limit=5&offset=10", 5, 10},
		{"?limit=-1", DefaultLimit, 0},
		{"?limit=9999", MaxLimit, 0},
		{"?offset=-3", DefaultLimit, 0},
	}
	for _, tc := range cases {
		p := params(t, tc.query)
		if p.Limit != tc.limit || p.Offset != tc.off {
			t.Errorf("%q: got limit=%d offset=%d, want %d/%d", tc.query, p.Limit, p.Offset, tc.limit, tc.off)
		}
	}
}

func TestNewResponse(t *testing.T) {
	r := NewResponse([]int{1, 2}, 10, 2, 0)
	if !r.HasMore {
		t.Error("expected more pages")
	}
	r = NewResponse([]int{1, 2}, 2, 20, 0)
	if r.HasMore {
		t.Error("expected no more pages")
	}
}

func TestSQL(t *testing.T) {
	p := Params{Limit: 5, Offset: 15}
	if got := p.SQL(); got != "LIMIT 5 OFFSET 15" {
		t.Errorf("unexpected clause %q", got)
	}
}
