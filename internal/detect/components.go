package detect

import (
	"container/list"

	"github.com/MeKo-Tech/poblur/internal/mempool"
)

// compStats holds the pixel count and bounding box of a connected component.
type compStats struct {
	count int
	minX  int
	minY  int
	maxX  int
	maxY  int
}

func (c compStats) width() int  { return c.maxX - c.minX + 1 }
func (c compStats) height() int { return c.maxY - c.minY + 1 }

// binarize creates a pooled binary mask from an ink map with threshold t.
// The caller must return the mask via mempool.PutBool.
func binarize(ink []float32, w, h int, t float32) []bool {
	mask := mempool.GetBool(w * h)
	for i, v := range ink {
		if v >= t {
			mask[i] = true
		}
	}
	return mask
}

// connectedComponents finds 4-connected components in the mask and returns
// their stats in scan order (top-to-bottom, left-to-right by seed pixel).
func connectedComponents(mask []bool, w, h int) []compStats {
	visited := mempool.GetBool(w * h)
	defer mempool.PutBool(visited)

	var comps []compStats
	for y := range h {
		for x := range w {
			idx := y*w + x
			if mask[idx] && !visited[idx] {
				comps = append(comps, componentBFS(mask, visited, w, h, x, y))
			}
		}
	}
	return comps
}

// componentBFS flood-fills one component starting from a seed pixel.
func componentBFS(mask, visited []bool, w, h, startX, startY int) compStats {
	idx := func(x, y int) int { return y*w + x }
	startIdx := idx(startX, startY)

	st := compStats{minX: startX, minY: startY, maxX: startX, maxY: startY}
	q := list.New()
	q.PushBack(startIdx)
	visited[startIdx] = true

	dirs := [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

	for q.Len() > 0 {
		e := q.Front()
		q.Remove(e)
		ci, ok := e.Value.(int)
		if !ok {
			continue
		}
		cx, cy := ci%w, ci/w

		st.count++
		if cx < st.minX {
			st.minX = cx
		}
		if cy < st.minY {
			st.minY = cy
		}
		if cx > st.maxX {
			st.maxX = cx
		}
		if cy > st.maxY {
			st.maxY = cy
		}

		for _, d := range dirs {
			nx, ny := cx+d[0], cy+d[1]
			if nx >= 0 && nx < w && ny >= 0 && ny < h {
				ni := idx(nx, ny)
				if mask[ni] && !visited[ni] {
					visited[ni] = true
					q.PushBack(ni)
				}
			}
		}
	}
	return st
}
