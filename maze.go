package pathviz

import (
	"fmt"
	"math/rand"
	"strings"

	perlin "github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// GeneratorKind selects a wall generator.
type GeneratorKind int

const (
	// GeneratorUniform makes each cell a wall independently with WallChance.
	GeneratorUniform GeneratorKind = iota
	// GeneratorPerlin thresholds Perlin noise sampled at (x/10, y/10).
	GeneratorPerlin
	// GeneratorSimplex thresholds OpenSimplex noise sampled at (x/5, y/5).
	GeneratorSimplex
)

const (
	perlinScale  = 10.0
	simplexScale = 5.0

	// a single octave keeps the large smooth blobs of plain 2D Perlin noise;
	// with one octave alpha and beta have no effect
	perlinAlpha   = 2.0
	perlinBeta    = 2.0
	perlinOctaves = 1

	// noise seeds are drawn from [0, noiseSeedRange) of the run source
	noiseSeedRange = 1000
)

func (k GeneratorKind) String() string {
	switch k {
	case GeneratorUniform:
		return "uniform"
	case GeneratorPerlin:
		return "perlin"
	case GeneratorSimplex:
		return "simplex"
	default:
		return fmt.Sprintf("GeneratorKind(%d)", int(k))
	}
}

// ParseGeneratorKind accepts "uniform", "perlin" and "simplex", plus the
// aliases "uniform-random", "noise-a" and "noise-b".
func ParseGeneratorKind(s string) (GeneratorKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "uniform", "uniform-random", "random":
		return GeneratorUniform, nil
	case "perlin", "noise-a":
		return GeneratorPerlin, nil
	case "simplex", "opensimplex", "noise-b":
		return GeneratorSimplex, nil
	}
	return 0, fmt.Errorf("%w: unknown wall generator %q", ErrInvalidConfig, s)
}

// WallGenerator decides whether the cell at (x, y) is a wall.
type WallGenerator interface {
	Generate(x, y int) bool
}

// NewWallGenerator builds the generator for kind. Noise generators draw their
// seed from rng, so one run seed always reproduces the same walls.
func NewWallGenerator(kind GeneratorKind, wallChance float64, rng *rand.Rand) (WallGenerator, error) {
	if wallChance < 0 || wallChance > 1 {
		return nil, fmt.Errorf("%w: wall chance %v outside [0,1]", ErrInvalidConfig, wallChance)
	}
	// noise lives in [-1,1], the chance in [0,1]
	threshold := wallChance*2 - 1

	switch kind {
	case GeneratorUniform:
		return uniformWalls{chance: wallChance, rng: rng}, nil
	case GeneratorPerlin:
		seed := rng.Int63n(noiseSeedRange)
		return perlinWalls{
			noise:     perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, seed),
			threshold: threshold,
		}, nil
	case GeneratorSimplex:
		seed := rng.Int63n(noiseSeedRange)
		return simplexWalls{noise: opensimplex.New(seed), threshold: threshold}, nil
	}
	return nil, fmt.Errorf("%w: unknown wall generator %v", ErrInvalidConfig, kind)
}

type uniformWalls struct {
	chance float64
	rng    *rand.Rand
}

func (u uniformWalls) Generate(int, int) bool {
	return u.rng.Float64() < u.chance
}

type perlinWalls struct {
	noise     *perlin.Perlin
	threshold float64
}

func (p perlinWalls) Generate(x, y int) bool {
	return p.noise.Noise2D(float64(x)/perlinScale, float64(y)/perlinScale) < p.threshold
}

type simplexWalls struct {
	noise     opensimplex.Noise
	threshold float64
}

func (s simplexWalls) Generate(x, y int) bool {
	return s.noise.Eval2(float64(x)/simplexScale, float64(y)/simplexScale) < s.threshold
}

// GenerateWalls evaluates gen once for every cell, column by column, then
// clears the start and goal.
func GenerateWalls(g *Grid, gen WallGenerator) {
	for x := 0; x < g.size; x++ {
		for y := 0; y < g.size; y++ {
			g.SetWall(Coord{x, y}, gen.Generate(x, y))
		}
	}
	g.SetWall(g.Start(), false)
	g.SetWall(g.Goal(), false)
}
