package sky

// Members below this index are skipped, so a cluster drawing count n
// produces n-5 stars.
const clusterSkip = 5

// drawBaseStars scatters small stars uniformly, one per divisor pixels of
// area.
func drawBaseStars(sc *Scene, divisor IntRange) (int, error) {
	r := sc.Rand
	w, h := sc.width(), sc.height()
	d := intn(r, divisor.Min, divisor.Max)
	if d < 1 {
		d = 1
	}
	count := w * h / d
	kind := sc.smallKind()
	for i := 0; i < count; i++ {
		p := Point{X: float64(intn(r, 0, w)), Y: float64(intn(r, 0, h)), Kind: kind}
		if err := p.Draw(sc); err != nil {
			return i, err
		}
	}
	return count, nil
}

// drawClusters places a random number of star clusters around random
// centers. It returns the total number of stars drawn.
func drawClusters(sc *Scene, clusters, members IntRange) (int, error) {
	r := sc.Rand
	w, h := sc.width(), sc.height()
	k := intn(r, clusters.Min, clusters.Max)
	total := 0
	for c := 0; c < k; c++ {
		cx := float64(intn(r, 0, w))
		cy := float64(intn(r, 0, h))
		size := uniform(r, 40, 75)
		count := intn(r, members.Min, members.Max)
		n, err := scatterCluster(sc, cx, cy, size, count)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// scatterCluster draws the members of one cluster at offsets in
// [-size, size) around the center.
func scatterCluster(sc *Scene, cx, cy, size float64, count int) (int, error) {
	r := sc.Rand
	kind := sc.smallKind()
	n := 0
	for i := clusterSkip; i < count; i++ {
		p := Point{
			X:    cx + uniform(r, -size, size),
			Y:    cy + uniform(r, -size, size),
			Kind: kind,
		}
		if err := p.Draw(sc); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// drawClosest places a few big stars.
func drawClosest(sc *Scene, closest IntRange) (int, error) {
	r := sc.Rand
	w, h := sc.width(), sc.height()
	n := intn(r, closest.Min, closest.Max)
	kind := sc.bigKind()
	for i := 0; i < n; i++ {
		p := Point{X: float64(intn(r, 0, w)), Y: float64(intn(r, 0, h)), Kind: kind}
		if err := p.Draw(sc); err != nil {
			return i, err
		}
	}
	return n, nil
}
