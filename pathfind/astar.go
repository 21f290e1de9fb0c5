package pathfind

import (
	"container/heap"

	"github.com/Lambaga/Alchemist-SUI-sub001/geom"
)

// DefaultMaxExpansions bounds a single search against pathological maps.
// Tunable, not a contract.
const DefaultMaxExpansions = 5000

// node is a frontier entry. Ordering is f, then tile x, then tile y, so
// repeated searches over identical grids return identical paths even
// though Manhattan grids are full of f-ties.
type node struct {
	f    int
	x, y int
}

type nodeHeap []node

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	if h[i].x != h[j].x {
		return h[i].x < h[j].x
	}
	return h[i].y < h[j].y
}
func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *nodeHeap) Push(v any) { *h = append(*h, v.(node)) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

func manhattan(ax, ay, bx, by int) int {
	dx := ax - bx
	if dx < 0 {
		dx = -dx
	}
	dy := ay - by
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// FindPath runs a 4-connected A* search from start to goal (both in
// pixels) and returns the route as tile-center waypoints, start and goal
// tiles included. An empty result means "no route currently available":
// the goal is sealed off, the frontier emptied, or the search hit
// maxExpansions. None of those are errors; callers fall back to idling.
//
// A blocked start tile is substituted with its first free axis neighbor
// (west, east, north, south); if none is free the search proceeds from
// the blocked tile and fails outward naturally. A blocked goal tile gets
// the same substitution, but with no free neighbor the goal is
// unreachable in principle and the search returns early.
//
// maxExpansions <= 0 selects DefaultMaxExpansions.
func (g *Grid) FindPath(start, goal geom.Vec2, maxExpansions int) []geom.Vec2 {
	if maxExpansions <= 0 {
		maxExpansions = DefaultMaxExpansions
	}

	sx, sy := g.WorldToTile(start)
	gx, gy := g.WorldToTile(goal)

	if !g.free(sx, sy) {
		for _, n := range g.neighbors4(sx, sy) {
			if g.free(n.x, n.y) {
				sx, sy = n.x, n.y
				break
			}
		}
	}
	if !g.free(gx, gy) {
		found := false
		for _, n := range g.neighbors4(gx, gy) {
			if g.free(n.x, n.y) {
				gx, gy = n.x, n.y
				found = true
				break
			}
		}
		if !found {
			return nil
		}
	}

	startTile := tile{sx, sy}
	goalTile := tile{gx, gy}

	open := &nodeHeap{{f: 0, x: sx, y: sy}}
	heap.Init(open)
	cameFrom := make(map[tile]tile)
	gScore := map[tile]int{startTile: 0}

	goalPopped := false
	expansions := 0
	for open.Len() > 0 && expansions < maxExpansions {
		cur := heap.Pop(open).(node)
		expansions++
		if cur.x == gx && cur.y == gy {
			goalPopped = true
			break
		}
		curTile := tile{cur.x, cur.y}
		curG := gScore[curTile]
		for _, nb := range g.neighbors4(cur.x, cur.y) {
			if !g.free(nb.x, nb.y) {
				continue
			}
			tentative := curG + 1
			if old, ok := gScore[nb]; ok && tentative >= old {
				continue
			}
			cameFrom[nb] = curTile
			gScore[nb] = tentative
			heap.Push(open, node{
				f: tentative + manhattan(nb.x, nb.y, gx, gy),
				x: nb.x,
				y: nb.y,
			})
		}
	}

	// The path counts only once the goal has been settled. A goal that
	// was merely discovered before the cap fired could still carry a
	// non-shortest g, so that case reports no route.
	if !goalPopped {
		return nil
	}

	tiles := []tile{goalTile}
	cur := goalTile
	for cur != startTile {
		prev, ok := cameFrom[cur]
		if !ok {
			return nil
		}
		tiles = append(tiles, prev)
		cur = prev
	}
	for i, j := 0, len(tiles)-1; i < j; i, j = i+1, j-1 {
		tiles[i], tiles[j] = tiles[j], tiles[i]
	}

	waypoints := make([]geom.Vec2, len(tiles))
	for i, t := range tiles {
		waypoints[i] = g.TileCenter(t.x, t.y)
	}
	return waypoints
}
