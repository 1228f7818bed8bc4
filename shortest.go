package pathviz

import (
	"container/heap"

	"github.com/pdrpinto/pathviz/internal"
)

// Path is a route from start to goal with its total cost.
type Path struct {
	Cells []Coord
	Cost  float64
}

// ShortestPath runs Dijkstra from start to goal over the walls of grid with
// the same moves and step costs as a Stepper. It ignores any search state
// stored in the grid. found is false when the goal is walled off.
func ShortestPath(grid *Grid, diagonal bool) (path Path, found bool) {
	start, goal := grid.Start(), grid.Goal()
	openSet := make(priorityQueue[Coord], 0)
	heap.Init(&openSet)

	sequence := 0
	push := func(c Coord, cost float64) {
		heap.Push(&openSet, &priorityQueueItem[Coord]{Node: c, Cost: cost, Sequence: sequence})
		sequence++
	}
	push(start, 0)

	cameFrom := make(map[Coord]Coord)
	pathCostFromStart := map[Coord]float64{start: 0}
	closedSet := make(map[Coord]bool)

	for openSet.Len() > 0 {
		currentItem := heap.Pop(&openSet).(*priorityQueueItem[Coord])
		current := currentItem.Node
		if closedSet[current] {
			continue
		}
		closedSet[current] = true

		if current == goal {
			cells, err := internal.ReconstructPath(func(c Coord) (Coord, bool) {
				prev, ok := cameFrom[c]
				return prev, ok
			}, goal, start, grid.Size()*grid.Size())
			if err != nil {
				return Path{}, false
			}
			return Path{Cells: cells, Cost: currentItem.Cost}, true
		}

		for _, next := range grid.neighbors(current, diagonal) {
			if closedSet[next] {
				continue
			}
			tentative := currentItem.Cost + stepDistance(current, next, diagonal)
			if previous, seen := pathCostFromStart[next]; !seen || tentative < previous {
				pathCostFromStart[next] = tentative
				cameFrom[next] = current
				push(next, tentative)
			}
		}
	}
	return Path{}, false
}
