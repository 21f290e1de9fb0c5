package sim

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Lambaga/Alchemist-SUI-sub001/geom"
	"github.com/Lambaga/Alchemist-SUI-sub001/pathfind"
	"github.com/Lambaga/Alchemist-SUI-sub001/spatial"
	"github.com/Lambaga/Alchemist-SUI-sub001/world"
)

const (
	TickRate     = 60 // simulation ticks per second
	TickDuration = time.Second / TickRate

	maxProjectiles = 128
)

// Game owns one running world: the collision broker, the pathfinding
// grid, and all entities. Everything is driven synchronously from one
// simulation goroutine; the mutex exists only so snapshots for the debug
// viewer can cross goroutines.
type Game struct {
	mu          sync.RWMutex
	broker      *spatial.Broker
	grid        *pathfind.Grid
	walls       []*Wall
	player      *Player
	enemies     map[string]*Enemy
	projectiles map[string]*Projectile
	worldName   string
	tick        uint64
	running     bool
	stop        chan struct{}
	log         *logrus.Entry

	pathRequests uint64
	pathFailures uint64
}

// NewGame builds a game from a loaded world: the pathfinding grid and
// the broker's static set are both rebuilt from the same obstacle
// rectangles, then the player and enemies are registered as dynamics.
func NewGame(w *world.World, log *logrus.Logger) (*Game, error) {
	if log == nil {
		log = logrus.New()
	}
	grid, err := pathfind.NewGrid(w.Tiles.CountX, w.Tiles.CountY, w.Tiles.Width, w.Tiles.Height)
	if err != nil {
		return nil, err
	}
	rects := w.ObstacleRects()
	grid.Rebuild(rects)

	g := &Game{
		broker:      spatial.NewBroker(spatial.DefaultCellSize),
		grid:        grid,
		enemies:     make(map[string]*Enemy),
		projectiles: make(map[string]*Projectile),
		worldName:   w.Name,
		stop:        make(chan struct{}),
		log:         log.WithField("component", "sim"),
	}

	for _, r := range rects {
		wall := &Wall{rect: r}
		if err := g.broker.AddStatic(wall, r); err != nil {
			return nil, fmt.Errorf("sim: register obstacle: %w", err)
		}
		g.walls = append(g.walls, wall)
	}

	g.player = &Player{
		ID:    uuid.NewString(),
		rect:  geom.NewRect(w.Spawn.X, w.Spawn.Y, PlayerSize, PlayerSize),
		Speed: PlayerSpeed,
		HP:    PlayerMaxHP,
		MaxHP: PlayerMaxHP,
		FaceX: 1,
	}
	if err := g.broker.AddDynamic(g.player, g.player.rect); err != nil {
		return nil, fmt.Errorf("sim: register player: %w", err)
	}

	for _, s := range w.Enemies {
		e := &Enemy{
			ID:    uuid.NewString(),
			rect:  geom.NewRect(s.X, s.Y, EnemySize, EnemySize),
			Speed: EnemySpeed,
			HP:    EnemyMaxHP,
			MaxHP: EnemyMaxHP,
		}
		if err := g.broker.AddDynamic(e, e.rect); err != nil {
			return nil, fmt.Errorf("sim: register enemy: %w", err)
		}
		g.enemies[e.ID] = e
	}

	g.log.WithFields(logrus.Fields{
		"world":     w.Name,
		"obstacles": len(rects),
		"enemies":   len(g.enemies),
	}).Info("world loaded")
	return g, nil
}

// Run drives the simulation in real time until Stop is called.
func (g *Game) Run() {
	g.mu.Lock()
	g.running = true
	g.mu.Unlock()

	ticker := time.NewTicker(TickDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.Step(1.0 / float64(TickRate))
		case <-g.stop:
			return
		}
	}
}

// Stop terminates the game loop.
func (g *Game) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running {
		g.running = false
		close(g.stop)
	}
}

// SetInput sets the player's movement direction for subsequent ticks.
func (g *Game) SetInput(x, y float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.player.InputX = x
	g.player.InputY = y
	if x != 0 || y != 0 {
		d := geom.Normalize(geom.Vec2{X: x, Y: y})
		g.player.FaceX = d.X
		g.player.FaceY = d.Y
	}
}

// Cast spawns a fireball from the player's center in the faced
// direction. Returns false when the projectile budget is exhausted.
func (g *Game) Cast() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.projectiles) >= maxProjectiles {
		return false
	}
	c := g.player.rect.Center()
	pr := &Projectile{
		ID:    uuid.NewString(),
		rect:  geom.NewRect(c.X-FireballSize/2, c.Y-FireballSize/2, FireballSize, FireballSize),
		VX:    g.player.FaceX * FireballSpeed,
		VY:    g.player.FaceY * FireballSpeed,
		TTL:   FireballTTL,
		Alive: true,
	}
	if err := g.broker.AddDynamic(pr, pr.rect); err != nil {
		return false
	}
	g.projectiles[pr.ID] = pr
	return true
}

// Step advances the simulation by dt seconds.
func (g *Game) Step(dt float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.tick++
	g.updatePlayer(dt)
	g.updateEnemies(dt)
	g.updateProjectiles(dt)
}

// Tick returns the current tick number.
func (g *Game) Tick() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.tick
}

// Player returns the player entity.
func (g *Game) Player() *Player { return g.player }

// moveClamped resolves movement one axis at a time so a diagonal push
// into a wall still slides along it. The clamping itself is this layer's
// job; the broker only reports intersections.
func (g *Game) moveClamped(obj spatial.Collidable, r geom.Rect, dx, dy float64) geom.Rect {
	if dx != 0 {
		moved := r.Moved(dx, 0)
		for _, c := range g.broker.Collisions(obj, moved) {
			wall, ok := c.(*Wall)
			if !ok {
				continue
			}
			if dx > 0 {
				moved.X = wall.rect.Left() - moved.W
			} else {
				moved.X = wall.rect.Right()
			}
		}
		r = moved
	}
	if dy != 0 {
		moved := r.Moved(0, dy)
		for _, c := range g.broker.Collisions(obj, moved) {
			wall, ok := c.(*Wall)
			if !ok {
				continue
			}
			if dy > 0 {
				moved.Y = wall.rect.Top() - moved.H
			} else {
				moved.Y = wall.rect.Bottom()
			}
		}
		r = moved
	}
	return r
}

func (g *Game) updatePlayer(dt float64) {
	p := g.player
	if p.InputX == 0 && p.InputY == 0 {
		return
	}
	d := geom.Normalize(geom.Vec2{X: p.InputX, Y: p.InputY})
	p.rect = g.moveClamped(p, p.rect, d.X*p.Speed*dt, d.Y*p.Speed*dt)
	g.broker.UpdateDynamic(p, p.rect)
}

func (g *Game) updateEnemies(dt float64) {
	playerCenter := g.player.rect.Center()
	ptx, pty := g.grid.WorldToTile(playerCenter)

	for _, e := range g.enemies {
		if e.attackCD > 0 {
			e.attackCD -= dt
		}
		center := e.rect.Center()
		dist := geom.Dist(center, playerCenter)

		if dist > EnemyDetectRange {
			if e.State != EnemyIdle {
				e.State = EnemyIdle
				e.path = nil
				e.hasGoal = false
			}
			continue
		}

		if dist <= EnemyAttackRange {
			e.State = EnemyAttacking
			e.path = nil
			e.hasGoal = false
			if e.attackCD <= 0 {
				g.player.HP -= EnemyAttackDamage
				if g.player.HP < 0 {
					g.player.HP = 0
				}
				e.attackCD = EnemyAttackCooldown
			}
			continue
		}

		e.State = EnemyChasing

		// Re-request a route only when the player changed tiles or the
		// current route ran out; per-tick searches are the caller's cost
		// to avoid, not the pathfinder's.
		if !e.hasGoal || e.goalTX != ptx || e.goalTY != pty || e.pathIdx >= len(e.path) {
			g.pathRequests++
			e.path = g.grid.FindPath(center, playerCenter, pathfind.DefaultMaxExpansions)
			e.pathIdx = 0
			e.goalTX, e.goalTY = ptx, pty
			e.hasGoal = true
			if len(e.path) == 0 {
				g.pathFailures++
				e.State = EnemyIdle
				e.hasGoal = false
				continue
			}
		}

		for e.pathIdx < len(e.path) && geom.Dist(center, e.path[e.pathIdx]) <= WaypointReached {
			e.pathIdx++
		}
		if e.pathIdx >= len(e.path) {
			continue
		}

		d := geom.Normalize(geom.Vec2{
			X: e.path[e.pathIdx].X - center.X,
			Y: e.path[e.pathIdx].Y - center.Y,
		})
		e.rect = g.moveClamped(e, e.rect, d.X*e.Speed*dt, d.Y*e.Speed*dt)
		g.broker.UpdateDynamic(e, e.rect)
	}
}

func (g *Game) updateProjectiles(dt float64) {
	var expired []string
	var killed []string

	for id, pr := range g.projectiles {
		pr.TTL -= dt
		if pr.TTL <= 0 {
			pr.Alive = false
			expired = append(expired, id)
			continue
		}
		pr.rect = pr.rect.Moved(pr.VX*dt, pr.VY*dt)
		g.broker.UpdateDynamic(pr, pr.rect)

		for _, c := range g.broker.Collisions(pr, pr.rect) {
			switch hit := c.(type) {
			case *Wall:
				pr.Alive = false
			case *Enemy:
				hit.HP -= FireballDamage
				pr.Alive = false
				if hit.HP <= 0 {
					killed = append(killed, hit.ID)
				}
			}
			if !pr.Alive {
				expired = append(expired, id)
				break
			}
		}
	}

	// removals collected first, applied second: never delete from a map
	// mid-iteration
	for _, id := range expired {
		if pr, ok := g.projectiles[id]; ok {
			g.broker.Remove(pr)
			delete(g.projectiles, id)
		}
	}
	for _, id := range killed {
		e, ok := g.enemies[id]
		if !ok {
			continue
		}
		g.broker.Remove(e)
		delete(g.enemies, id)
		g.log.WithField("enemy", id).Debug("enemy defeated")
	}
}

// BrokerStats exposes collision-system counters for metric sampling.
func (g *Game) BrokerStats() spatial.BrokerStats {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.broker.Stats()
}

// PathStats exposes pathfinder request/failure counters.
func (g *Game) PathStats() (requests, failures uint64) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.pathRequests, g.pathFailures
}
