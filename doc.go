// Package pathviz provides an incremental grid pathfinding engine for visualizers.
//
// It exposes two main entry points:
//
//   - Stepper: advance the search one expansion at a time and receive the cell
//     updates a renderer should draw for that frame.
//   - Search: run a Stepper to completion and get a Result.
//
// A run generates a maze on an N×N grid (uniform random, Perlin or OpenSimplex
// walls), then expands cells from (0,0) towards (N-1,N-1) with one of three
// frontier strategies (random walk, greedy best-first, A*). Once the goal is
// selected the path is rebuilt from predecessor links and emitted in one frame.
//
// Runs are reproducible: the same Config.Seed and generator give the same
// walls and the same random walk. A zero seed is treated as unset and replaced
// by one taken from the clock; read it back with Stepper.Seed to replay a run.
package pathviz
