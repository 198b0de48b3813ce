package cluster

import (
	"math"
)

// Options control the greedy hierarchical clustering. Zero values are
// replaced with the reference defaults used by the map view.
type Options struct {
	MinZoom   int
	MaxZoom   int
	Radius    float64 // clustering radius in pixels at the tile extent
	Extent    int     // tile extent in pixels
	MinPoints int     // minimum points to form an aggregate
	NodeSize  int     // kd-tree leaf size
}

// Point is one clusterable coordinate. Callers must only pass finite
// coordinates; records without them stay out of the spatial index.
type Point struct {
	Lon float64
	Lat float64
}

// Feature is a node of the cluster view at one zoom level: either a
// leaf wrapping exactly one source point, or an aggregate carrying the
// merged centroid and leaf count.
type Feature struct {
	ID        uint64  `json:"id"`
	Lon       float64 `json:"lon"`
	Lat       float64 `json:"lat"`
	Count     int     `json:"count"`
	IsCluster bool    `json:"is_cluster"`
	PointIdx  int     `json:"point_idx"` // index into the loaded points; -1 for aggregates
}

// Bounds is a geographic bounding box in lon/lat.
type Bounds struct {
	MinLon float64 `json:"min_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLon float64 `json:"max_lon"`
	MaxLat float64 `json:"max_lat"`
}

type treePoint struct {
	x, y      float64
	id        uint64
	numPoints int
	sourceIdx int   // leaf: index into the input slice; aggregate: -1
	parentID  int64 // aggregate id this point merged into, -1 if none
}

// Index is the per-zoom cluster hierarchy. Immutable after Load;
// rebuild by calling Load again on a fresh Index.
type Index struct {
	opts  Options
	trees []*kdTree
	n     int
}

func New(opts Options) *Index {
	if opts.MinZoom < 0 {
		opts.MinZoom = 0
	}
	if opts.MaxZoom <= 0 {
		opts.MaxZoom = 20
	}
	if opts.MaxZoom > 25 {
		// ids reserve 5 bits for the creation zoom
		opts.MaxZoom = 25
	}
	if opts.Radius <= 0 {
		opts.Radius = 75
	}
	if opts.Extent <= 0 {
		opts.Extent = 512
	}
	if opts.MinPoints <= 0 {
		opts.MinPoints = 2
	}
	if opts.NodeSize <= 0 {
		opts.NodeSize = 64
	}
	if opts.MinZoom > opts.MaxZoom {
		opts.MinZoom = opts.MaxZoom
	}

	return &Index{
		opts:  opts,
		trees: make([]*kdTree, opts.MaxZoom+2),
	}
}

// Load builds the cluster hierarchy bottom-up: leaves at maxZoom+1,
// then a greedy radius merge per zoom down to minZoom. O(n log n).
func (i *Index) Load(points []Point) {
	i.n = len(points)

	leaves := make([]treePoint, len(points))
	for idx, p := range points {
		leaves[idx] = treePoint{
			x:         lngX(p.Lon),
			y:         latY(p.Lat),
			id:        uint64(idx),
			numPoints: 1,
			sourceIdx: idx,
			parentID:  -1,
		}
	}

	i.trees[i.opts.MaxZoom+1] = newKDTree(leaves, i.opts.NodeSize)

	for z := i.opts.MaxZoom; z >= i.opts.MinZoom; z-- {
		merged := i.clusterZoom(i.trees[z+1], z)
		i.trees[z] = newKDTree(merged, i.opts.NodeSize)
	}
}

// Len is the number of points loaded into the index.
func (i *Index) Len() int {
	return i.n
}

func (i *Index) radiusAt(zoom int) float64 {
	return i.opts.Radius / (float64(i.opts.Extent) * math.Pow(2, float64(zoom)))
}

func (i *Index) clusterZoom(tree *kdTree, zoom int) []treePoint {
	r := i.radiusAt(zoom)
	visited := make([]bool, len(tree.points))
	next := make([]treePoint, 0, len(tree.points))

	for idx := range tree.points {
		if visited[idx] {
			continue
		}
		visited[idx] = true
		p := tree.points[idx]

		neighbors := tree.within(p.x, p.y, r)

		numPoints := p.numPoints
		for _, n := range neighbors {
			if !visited[n] {
				numPoints += tree.points[n].numPoints
			}
		}

		if numPoints <= p.numPoints || numPoints < i.opts.MinPoints {
			next = append(next, p)
			continue
		}

		// Weighted centroid over everything merged into the aggregate.
		id := uint64(idx)<<5 | uint64(zoom+1)
		wx := p.x * float64(p.numPoints)
		wy := p.y * float64(p.numPoints)
		tree.points[idx].parentID = int64(id)

		for _, n := range neighbors {
			if visited[n] {
				continue
			}
			visited[n] = true
			np := tree.points[n]
			wx += np.x * float64(np.numPoints)
			wy += np.y * float64(np.numPoints)
			tree.points[n].parentID = int64(id)
		}

		next = append(next, treePoint{
			x:         wx / float64(numPoints),
			y:         wy / float64(numPoints),
			id:        id,
			numPoints: numPoints,
			sourceIdx: -1,
			parentID:  -1,
		})
	}

	return next
}

func (i *Index) limitZoom(zoom int) int {
	if zoom < i.opts.MinZoom {
		return i.opts.MinZoom
	}
	if zoom > i.opts.MaxZoom {
		return i.opts.MaxZoom + 1
	}
	return zoom
}

// GetClusters returns the features visible inside bounds at the given
// zoom. Boxes crossing the antimeridian are split into two queries.
func (i *Index) GetClusters(bounds Bounds, zoom int) []Feature {
	tree := i.trees[i.limitZoom(zoom)]
	if tree == nil {
		return nil
	}

	minLon, maxLon := bounds.MinLon, bounds.MaxLon
	if maxLon-minLon >= 360 {
		minLon, maxLon = -180, 180
	}

	if minLon > maxLon {
		west := i.rangeFeatures(tree, minLon, bounds.MinLat, 180, bounds.MaxLat)
		east := i.rangeFeatures(tree, -180, bounds.MinLat, maxLon, bounds.MaxLat)
		return append(west, east...)
	}

	return i.rangeFeatures(tree, minLon, bounds.MinLat, maxLon, bounds.MaxLat)
}

func (i *Index) rangeFeatures(tree *kdTree, minLon, minLat, maxLon, maxLat float64) []Feature {
	idxs := tree.withinRange(lngX(minLon), latY(maxLat), lngX(maxLon), latY(minLat))

	features := make([]Feature, 0, len(idxs))
	for _, idx := range idxs {
		features = append(features, toFeature(tree.points[idx]))
	}
	return features
}

func toFeature(p treePoint) Feature {
	return Feature{
		ID:        p.id,
		Lon:       xLng(p.x),
		Lat:       yLat(p.y),
		Count:     p.numPoints,
		IsCluster: p.numPoints > 1,
		PointIdx:  p.sourceIdx,
	}
}

// Children returns the features an aggregate splits into one zoom
// level deeper.
func (i *Index) Children(clusterID uint64) []Feature {
	children := i.childPoints(clusterID)
	features := make([]Feature, 0, len(children))
	for _, c := range children {
		features = append(features, toFeature(c))
	}
	return features
}

func (i *Index) childPoints(clusterID uint64) []treePoint {
	originZoom := int(clusterID & 31)
	originIdx := int(clusterID >> 5)
	if originZoom < 1 || originZoom >= len(i.trees) {
		return nil
	}
	tree := i.trees[originZoom]
	if tree == nil || originIdx >= len(tree.points) {
		return nil
	}

	origin := tree.points[originIdx]
	r := i.radiusAt(originZoom - 1)

	var children []treePoint
	for _, n := range tree.within(origin.x, origin.y, r) {
		if tree.points[n].parentID == int64(clusterID) {
			children = append(children, tree.points[n])
		}
	}
	return children
}

// ExpansionZoom returns the minimum zoom at which the aggregate
// dissolves into more granular children. Drives the zoom-to-expand
// camera move on cluster clicks.
func (i *Index) ExpansionZoom(clusterID uint64) int {
	expansionZoom := int(clusterID&31) - 1

	for expansionZoom <= i.opts.MaxZoom {
		children := i.childPoints(clusterID)
		expansionZoom++
		if len(children) != 1 {
			break
		}
		if children[0].numPoints == 1 {
			break
		}
		clusterID = children[0].id
	}

	return expansionZoom
}
