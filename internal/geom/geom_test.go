package geom

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestMatrixMultiplyOrder(t *testing.T) {
	// translate after rotate: (1,0) -> (0,1) -> (10,11)
	m := Translate(10, 10).Multiply(Rotate(90))
	got := m.Apply(Point{X: 1, Y: 0})
	if diff := cmp.Diff(Point{X: 10, Y: 11}, got, approx); diff != "" {
		t.Errorf("Apply mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, m.IsMirror())
	assert.True(t, Scale(-1, 1).Multiply(m).IsMirror())
}

func TestApplyVectorIgnoresTranslation(t *testing.T) {
	m := Translate(5, 5).Multiply(Scale(2, 3))
	got := m.ApplyVector(Point{X: 1, Y: 1})
	assert.InDelta(t, 2, got.X, 1e-12)
	assert.InDelta(t, 3, got.Y, 1e-12)
}

func TestBox(t *testing.T) {
	var b Box
	assert.True(t, b.IsEmpty())
	assert.Zero(t, b.Width())

	b = BoxOf(Point{X: 1, Y: 2}, Point{X: -3, Y: 5}, Point{X: math.NaN(), Y: 0})
	require.False(t, b.IsEmpty())
	assert.Equal(t, Point{X: -3, Y: 2}, b.Min)
	assert.Equal(t, Point{X: 1, Y: 5}, b.Max)
	assert.Equal(t, 4.0, b.Width())
	assert.Equal(t, 3.0, b.Height())

	u := b.Union(Box{})
	assert.Equal(t, b, u)
	u = b.Union(BoxOf(Point{X: 10, Y: 10}))
	assert.Equal(t, Point{X: 10, Y: 10}, u.Max)
}

func TestArcEndpoints(t *testing.T) {
	tests := []struct {
		name       string
		start, end float64
		wantFirst  Point
		wantLast   Point
	}{
		{"quarter", 0, 90, Point{X: 1, Y: 0}, Point{X: 0, Y: 1}},
		{"wraps past zero", 270, 90, Point{X: 0, Y: -1}, Point{X: 0, Y: 1}},
		{"negative start", -90, 0, Point{X: 0, Y: -1}, Point{X: 1, Y: 0}},
		{"full circle", 0, 360, Point{X: 1, Y: 0}, Point{X: 1, Y: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pts := Arc(Point{}, 1, tt.start, tt.end)
			require.GreaterOrEqual(t, len(pts), 3)
			if diff := cmp.Diff(tt.wantFirst, pts[0], cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Errorf("first point (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantLast, pts[len(pts)-1], cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Errorf("last point (-want +got):\n%s", diff)
			}
		})
	}
}

func TestArcStaysOnRadius(t *testing.T) {
	center := Point{X: 3, Y: -2}
	for _, p := range Arc(center, 2.5, 10, 200) {
		assert.InDelta(t, 2.5, p.Sub(center).Len(), 1e-9)
	}
}

func TestBulgeArcSemicircle(t *testing.T) {
	// bulge 1 from (0,0) to (2,0) is a half circle below the chord (CCW).
	pts := BulgeArc(Point{X: 0, Y: 0}, Point{X: 2, Y: 0}, 1)
	require.NotEmpty(t, pts)
	assert.Equal(t, Point{X: 2, Y: 0}, pts[len(pts)-1])
	center := Point{X: 1, Y: 0}
	minY := 0.0
	for _, p := range pts {
		assert.InDelta(t, 1, p.Sub(center).Len(), 1e-9)
		minY = math.Min(minY, p.Y)
	}
	assert.InDelta(t, -1, minY, 1e-3)
}

func TestBulgeArcStraight(t *testing.T) {
	pts := BulgeArc(Point{}, Point{X: 5, Y: 5}, 0)
	assert.Equal(t, []Point{{X: 5, Y: 5}}, pts)
}

func TestEllipse(t *testing.T) {
	pts := Ellipse(Point{}, Point{X: 4, Y: 0}, 0.5, 0, 2*math.Pi)
	b := BoxOf(pts...)
	assert.InDelta(t, 8, b.Width(), 1e-9)
	assert.InDelta(t, 4, b.Height(), 1e-3)

	half := Ellipse(Point{}, Point{X: 4, Y: 0}, 0.5, 0, math.Pi)
	if diff := cmp.Diff(Point{X: -4, Y: 0}, half[len(half)-1], cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("end of half ellipse (-want +got):\n%s", diff)
	}
}

func TestClampedKnots(t *testing.T) {
	assert.Equal(t, []float64{0, 0, 0, 0, 1, 1, 1, 1}, ClampedKnots(4, 3))
	assert.Equal(t, []float64{0, 0, 0, 1, 2, 3, 3, 3}, ClampedKnots(5, 2))
}

func TestBSplineInterpolatesEnds(t *testing.T) {
	ctrl := []Point{{X: 0, Y: 0}, {X: 1, Y: 2}, {X: 3, Y: 2}, {X: 4, Y: 0}}
	pts := BSpline(3, ctrl, nil, nil)
	require.Len(t, pts, 33)
	if diff := cmp.Diff(ctrl[0], pts[0], approx); diff != "" {
		t.Errorf("start (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(ctrl[3], pts[len(pts)-1], approx); diff != "" {
		t.Errorf("end (-want +got):\n%s", diff)
	}
	// symmetric control polygon peaks at x=2
	mid := pts[len(pts)/2]
	assert.InDelta(t, 2, mid.X, 1e-9)
	assert.InDelta(t, 1.5, mid.Y, 1e-9)
}

func TestBSplineDegenerate(t *testing.T) {
	assert.Nil(t, BSpline(3, nil, nil, nil))
	ctrl := []Point{{X: 0, Y: 0}, {X: 1, Y: 1}}
	assert.Equal(t, ctrl, BSpline(3, ctrl, nil, nil))
}

func TestHatchLinesSquare(t *testing.T) {
	square := [][]Point{{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}}
	segs, ok := HatchLines(square, Point{X: 0, Y: 1.25}, 0, Point{X: 0, Y: 2.5}, 100)
	require.True(t, ok)
	// y = 1.25, 3.75, 6.25, 8.75
	require.Len(t, segs, 4)
	for _, s := range segs {
		assert.InDelta(t, 0, s.From.X, 1e-9)
		assert.InDelta(t, 10, s.To.X, 1e-9)
	}
}

func TestHatchLinesHole(t *testing.T) {
	rings := [][]Point{
		{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}},
		{{X: 4, Y: 4}, {X: 6, Y: 4}, {X: 6, Y: 6}, {X: 4, Y: 6}},
	}
	segs, ok := HatchLines(rings, Point{X: 0, Y: 5}, 0, Point{X: 0, Y: 20}, 100)
	require.True(t, ok)
	// the single line y=5 crosses the hole and splits in two
	require.Len(t, segs, 2)
	assert.InDelta(t, 4, segs[0].To.X, 1e-9)
	assert.InDelta(t, 6, segs[1].From.X, 1e-9)
}

func TestHatchLinesLimit(t *testing.T) {
	square := [][]Point{{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}}
	_, ok := HatchLines(square, Point{}, 45, Point{X: -0.001, Y: 0.001}, 100)
	assert.False(t, ok)
}
