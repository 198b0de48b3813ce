package cluster

// Static kd-tree over projected points. Built once per zoom level
// during Load; queries never mutate it.
type kdTree struct {
	points   []treePoint
	idxs     []int
	nodeSize int
}

func newKDTree(points []treePoint, nodeSize int) *kdTree {
	t := &kdTree{
		points:   points,
		idxs:     make([]int, len(points)),
		nodeSize: nodeSize,
	}
	for i := range t.idxs {
		t.idxs[i] = i
	}
	if len(points) > 0 {
		t.sortKD(0, len(points)-1, 0)
	}
	return t
}

func (t *kdTree) coord(i, axis int) float64 {
	p := t.points[t.idxs[i]]
	if axis == 0 {
		return p.x
	}
	return p.y
}

func (t *kdTree) sortKD(left, right, axis int) {
	if right-left <= t.nodeSize {
		return
	}

	m := (left + right) / 2
	t.selectMedian(m, left, right, axis)

	t.sortKD(left, m-1, 1-axis)
	t.sortKD(m+1, right, 1-axis)
}

// selectMedian partially sorts idxs[left..right] so that the element at
// k is the axis-median (quickselect).
func (t *kdTree) selectMedian(k, left, right, axis int) {
	for right > left {
		pivot := t.coord(k, axis)
		i, j := left, right

		t.swap(left, k)
		if t.coord(right, axis) > pivot {
			t.swap(left, right)
		}

		for i < j {
			t.swap(i, j)
			i++
			j--
			for t.coord(i, axis) < pivot {
				i++
			}
			for t.coord(j, axis) > pivot {
				j--
			}
		}

		if t.coord(left, axis) == pivot {
			t.swap(left, j)
		} else {
			j++
			t.swap(j, right)
		}

		if j <= k {
			left = j + 1
		}
		if k <= j {
			right = j - 1
		}
	}
}

func (t *kdTree) swap(i, j int) {
	t.idxs[i], t.idxs[j] = t.idxs[j], t.idxs[i]
}

type rangeFrame struct {
	left, right, axis int
}

// withinRange returns indexes into points for every point inside the
// projected bounding box.
func (t *kdTree) withinRange(minX, minY, maxX, maxY float64) []int {
	var result []int
	if len(t.points) == 0 {
		return result
	}

	stack := []rangeFrame{{0, len(t.idxs) - 1, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.right-f.left <= t.nodeSize {
			for i := f.left; i <= f.right; i++ {
				p := t.points[t.idxs[i]]
				if p.x >= minX && p.x <= maxX && p.y >= minY && p.y <= maxY {
					result = append(result, t.idxs[i])
				}
			}
			continue
		}

		m := (f.left + f.right) / 2
		p := t.points[t.idxs[m]]
		if p.x >= minX && p.x <= maxX && p.y >= minY && p.y <= maxY {
			result = append(result, t.idxs[m])
		}

		var c float64
		var lo, hi float64
		if f.axis == 0 {
			c, lo, hi = p.x, minX, maxX
		} else {
			c, lo, hi = p.y, minY, maxY
		}

		if lo <= c {
			stack = append(stack, rangeFrame{f.left, m - 1, 1 - f.axis})
		}
		if hi >= c {
			stack = append(stack, rangeFrame{m + 1, f.right, 1 - f.axis})
		}
	}

	return result
}

// within returns indexes for every point inside radius r of (x, y).
func (t *kdTree) within(x, y, r float64) []int {
	var result []int
	if len(t.points) == 0 {
		return result
	}

	r2 := r * r
	stack := []rangeFrame{{0, len(t.idxs) - 1, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.right-f.left <= t.nodeSize {
			for i := f.left; i <= f.right; i++ {
				p := t.points[t.idxs[i]]
				if sqDist(p.x, p.y, x, y) <= r2 {
					result = append(result, t.idxs[i])
				}
			}
			continue
		}

		m := (f.left + f.right) / 2
		p := t.points[t.idxs[m]]
		if sqDist(p.x, p.y, x, y) <= r2 {
			result = append(result, t.idxs[m])
		}

		var c, target float64
		if f.axis == 0 {
			c, target = p.x, x
		} else {
			c, target = p.y, y
		}

		if target-r <= c {
			stack = append(stack, rangeFrame{f.left, m - 1, 1 - f.axis})
		}
		if target+r >= c {
			stack = append(stack, rangeFrame{m + 1, f.right, 1 - f.axis})
		}
	}

	return result
}

func sqDist(ax, ay, bx, by float64) float64 {
	dx := ax - bx
	dy := ay - by
	return dx*dx + dy*dy
}
