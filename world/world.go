// Package world loads map definitions: tile grid dimensions, the static
// obstacle rectangles both the collision broker and the pathfinder are
// rebuilt from, and entity spawn points. Definitions are YAML files
// exported from the map editor.
package world

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Lambaga/Alchemist-SUI-sub001/geom"
)

// ErrInvalidWorld wraps every validation failure in a world definition.
var ErrInvalidWorld = errors.New("world: invalid definition")

// TileSpec describes the map's tile grid.
type TileSpec struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	CountX int `yaml:"count_x"`
	CountY int `yaml:"count_y"`
}

// RectSpec is an obstacle rectangle in pixels.
type RectSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

// SpawnSpec is a spawn position in pixels.
type SpawnSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// World is one loaded map.
type World struct {
	Name      string      `yaml:"name"`
	Tiles     TileSpec    `yaml:"tiles"`
	Obstacles []RectSpec  `yaml:"obstacles"`
	Spawn     SpawnSpec   `yaml:"spawn"`
	Enemies   []SpawnSpec `yaml:"enemies"`
}

// Load reads and validates a world definition file.
func Load(path string) (*World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("world: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a world definition. Validation happens
// here, at the boundary, so the collision and pathfinding cores never
// see zero-area rects or empty grids.
func Parse(data []byte) (*World, error) {
	var w World
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("world: parse: %w", err)
	}
	if err := w.validate(); err != nil {
		return nil, err
	}
	return &w, nil
}

func (w *World) validate() error {
	t := w.Tiles
	if t.Width <= 0 || t.Height <= 0 {
		return fmt.Errorf("%w: tile size %dx%d", ErrInvalidWorld, t.Width, t.Height)
	}
	if t.CountX <= 0 || t.CountY <= 0 {
		return fmt.Errorf("%w: tile counts %dx%d", ErrInvalidWorld, t.CountX, t.CountY)
	}
	for i, o := range w.Obstacles {
		if o.W <= 0 || o.H <= 0 {
			return fmt.Errorf("%w: obstacle %d has non-positive size %gx%g", ErrInvalidWorld, i, o.W, o.H)
		}
	}
	return nil
}

// ObstacleRects returns the static collision rectangles.
func (w *World) ObstacleRects() []geom.Rect {
	rects := make([]geom.Rect, len(w.Obstacles))
	for i, o := range w.Obstacles {
		rects[i] = geom.Rect{X: o.X, Y: o.Y, W: o.W, H: o.H}
	}
	return rects
}

// PixelSize returns the map's extent in pixels.
func (w *World) PixelSize() (int, int) {
	return w.Tiles.CountX * w.Tiles.Width, w.Tiles.CountY * w.Tiles.Height
}
