package humastar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignals(t *testing.T) {
	s, err := ParseSignals([]byte(`{"lng":13.4,"lat":52.5,"button":2,"name":"x","ok":true}`))
	require.NoError(t, err)

	assert.Equal(t, 2, s.Int("button"))
	assert.Equal(t, "x", s.String("name"))
	assert.True(t, s.Bool("ok"))
	assert.True(t, s.Has("lng"))
	assert.Zero(t, s.Float("missing"))
	assert.Empty(t, s.String("lng"))

	pt, err := s.LonLat()
	require.NoError(t, err)
	assert.Equal(t, 13.4, pt[0])
	assert.Equal(t, 52.5, pt[1])
}

func TestLonLatRejectsBadPositions(t *testing.T) {
	for _, body := range []string{`{}`, `{"lng":1}`, `{"lng":200,"lat":0}`, `{"lng":0,"lat":-91}`} {
		s, err := ParseSignals([]byte(body))
		require.NoError(t, err)
		_, err = s.LonLat()
		assert.Error(t, err, body)
	}
}

func TestActionsFor(t *testing.T) {
	actions := ActionsFor("abc",
		ActionDef{Rel: "events", Pattern: "/api/v1/sessions/%s/events", Method: "GET"},
		ActionDef{Rel: "delete", Pattern: "/api/v1/sessions/%s", Method: "DELETE", Title: "End session"},
	)
	require.Len(t, actions, 2)
	assert.Equal(t, `</api/v1/sessions/abc/events>; rel="events"; method="GET"`, actions[0].LinkHeader())
	assert.Equal(t, `</api/v1/sessions/abc>; rel="delete"; method="DELETE"; title="End session"`, actions[1].LinkHeader())
}

func TestPaginate(t *testing.T) {
	all := []string{"a", "b", "c", "d", "e"}

	p := Paginate(all, 2, 2)
	assert.Equal(t, []string{"c", "d"}, p.Data)
	assert.Equal(t, 5, p.Total)
	assert.Equal(t, []string{
		`</s?offset=0&limit=2>; rel="first"`,
		`</s?offset=0&limit=2>; rel="prev"`,
		`</s?offset=4&limit=2>; rel="next"`,
		`</s?offset=4&limit=2>; rel="last"`,
	}, p.PaginationLinks("/s"))

	assert.Empty(t, Paginate(all, 9, 2).Data)
	assert.Len(t, Paginate(all, 0, 0).Data, 5)
	assert.Nil(t, Paginate([]string{}, 0, 0).PaginationLinks("/s"))
}

func TestParseLinkHeader(t *testing.T) {
	rel, href := parseLinkHeader(`</health>; rel="up"`)
	assert.Equal(t, "up", rel)
	assert.Equal(t, "/health", href)

	rel, _ = parseLinkHeader("garbage")
	assert.Empty(t, rel)
}
