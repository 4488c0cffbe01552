package geo

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestValidPosition(t *testing.T) {
	tests := []struct {
		name string
		pos  Position
		want bool
	}{
		{"berlin", Position{13.379495, 52.517588}, true},
		{"corner", Position{-180, 90}, true},
		{"lon out of range", Position{180.5, 10}, false},
		{"lat out of range", Position{10, -91}, false},
		{"three values", Position{1, 2, 3}, false},
		{"one value", Position{1}, false},
		{"empty", nil, false},
		{"nan", Position{math.NaN(), 1}, false},
		{"inf", Position{1, math.Inf(1)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidPosition(tt.pos))
		})
	}
}

func TestProjectionRoundTrip(t *testing.T) {
	in := orb.Point{13.379495, 52.517588}
	merc := PointToMercator(in)
	assert.False(t, IsWGS84(merc[0], merc[1]))

	back := PointToWGS84(merc)
	assert.InDelta(t, in[0], back[0], 1e-9)
	assert.InDelta(t, in[1], back[1], 1e-9)
}

func TestToMercatorDoesNotMutate(t *testing.T) {
	ring := orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}
	poly := orb.Polygon{ring}

	out := ToMercator(poly).(orb.Polygon)
	assert.Equal(t, orb.Point{1, 1}, poly[0][2])
	assert.Greater(t, out[0][2][0], 100000.0)
}

func TestEnsureMercator(t *testing.T) {
	projected := orb.Point{1489378.0, 6894699.0}
	assert.Equal(t, projected, EnsureMercator(projected))

	lonLat := orb.Point{13.379495, 52.517588}
	assert.Equal(t, PointToMercator(lonLat), EnsureMercator(lonLat))
}

func TestCenter(t *testing.T) {
	assert.Equal(t, orb.Point{3, 4}, Center(orb.Point{3, 4}))

	poly := orb.Polygon{{{0, 0}, {4, 0}, {4, 2}, {0, 2}, {0, 0}}}
	assert.Equal(t, orb.Point{2, 1}, Center(poly))
}
