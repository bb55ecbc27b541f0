package geom

import (
	"math"
	"sort"
)

// Segment is a straight line piece of a hatch pattern.
type Segment struct {
	From Point
	To   Point
}

// HatchLines fills the even-odd area described by rings with the parallel
// lines of one pattern family: lines run in direction angleDeg through base
// and repeat every offset. Dashes are not applied. At most limit lines are
// generated; ok is false when the family would need more.
func HatchLines(rings [][]Point, base Point, angleDeg float64, offset Point, limit int) (rsl []Segment, ok bool) {
	rad := angleDeg * math.Pi / 180
	dir := Point{X: math.Cos(rad), Y: math.Sin(rad)}
	normal := Point{X: -dir.Y, Y: dir.X}
	spacing := math.Abs(offset.Dot(normal))
	if spacing < 1e-9 {
		return nil, true
	}

	smin, smax := math.Inf(1), math.Inf(-1)
	for _, ring := range rings {
		for _, p := range ring {
			s := p.Sub(base).Dot(normal)
			smin = math.Min(smin, s)
			smax = math.Max(smax, s)
		}
	}
	if math.IsInf(smin, 0) {
		return nil, true
	}
	kmin := int(math.Ceil(smin / spacing))
	kmax := int(math.Floor(smax / spacing))
	if kmax-kmin+1 > limit {
		return nil, false
	}

	var ts []float64
	for k := kmin; k <= kmax; k++ {
		origin := base.Add(normal.Scale(float64(k) * spacing))
		ts = ts[:0]
		for _, ring := range rings {
			for i := range ring {
				a, b := ring[i], ring[(i+1)%len(ring)]
				sa := a.Sub(origin).Dot(normal)
				sb := b.Sub(origin).Dot(normal)
				if (sa > 0) == (sb > 0) {
					continue
				}
				hit := a.Add(b.Sub(a).Scale(sa / (sa - sb)))
				ts = append(ts, hit.Sub(origin).Dot(dir))
			}
		}
		sort.Float64s(ts)
		for i := 0; i+1 < len(ts); i += 2 {
			if ts[i+1]-ts[i] <= 0 {
				continue
			}
			rsl = append(rsl, Segment{
				From: origin.Add(dir.Scale(ts[i])),
				To:   origin.Add(dir.Scale(ts[i+1])),
			})
		}
	}
	return rsl, true
}
