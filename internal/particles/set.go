package particles

import (
	"fmt"
	"math"
)

// Set holds the state of every particle bound to one mesh. Vector buffers are
// packed xyz per particle, scalar buffers hold one value per particle.
type Set struct {
	n int

	initPos   []float32
	currPos   []float32
	velocity  []float32
	maxOffset []float32
	dist      []float32
	rotation  []float32

	lastResets int
}

// Initialize allocates a particle per vertex in positions (packed xyz).
// An empty positions slice yields an empty, inert set. A length that is not
// a multiple of three is a caller bug and panics.
func Initialize(positions []float32, rng Source) *Set {
	if len(positions)%3 != 0 {
		panic(fmt.Sprintf("particles: position buffer length %d is not a multiple of 3", len(positions)))
	}
	if rng == nil {
		rng = globalSource{}
	}

	n := len(positions) / 3
	s := &Set{
		n:         n,
		initPos:   make([]float32, len(positions)),
		currPos:   make([]float32, len(positions)),
		velocity:  make([]float32, n*3),
		maxOffset: make([]float32, n),
		dist:      make([]float32, n),
		rotation:  make([]float32, n),
	}
	copy(s.initPos, positions)
	copy(s.currPos, positions)

	for i := 0; i < n; i++ {
		x, y, z := i*3, i*3+1, i*3+2

		s.maxOffset[i] = float32(rng.Float64()*MaxOffsetSpread + MinMaxOffset)

		s.velocity[x] = float32(rng.Float64()*VelocityXYSpread + MinVelocityXY)
		s.velocity[y] = float32(rng.Float64()*VelocityXYSpread + MinVelocityXY)
		s.velocity[z] = float32(rng.Float64() * VelocityZSpread)

		s.dist[i] = InitialDistance
		s.rotation[i] = float32(rng.Float64() * math.Pi * 2)
	}

	return s
}

// Rebind discards all state and reinitializes the set for a new mesh.
// There is no partial resize: every buffer is reallocated.
func (s *Set) Rebind(positions []float32, rng Source) {
	*s = *Initialize(positions, rng)
}

// Tick advances every particle by one frame.
func (s *Set) Tick(p Params) {
	s.lastResets = s.tickRange(p, 0, s.n)
}

// tickRange updates particles [start, end) and returns how many were reset.
// Particles are independent so disjoint ranges may run concurrently.
func (s *Set) tickRange(p Params, start, end int) int {
	speed := math.Abs(p.SpeedFactor)
	resets := 0

	for i := start; i < end; i++ {
		x, y, z := i*3, i*3+1, i*3+2

		wx, wy := WaveOffset(float64(s.currPos[x]), float64(s.currPos[y]), p.WaveAmplitude)

		vx := (float64(s.velocity[x])*p.VelocityFactor.X + wx) * speed
		vy := (float64(s.velocity[y])*p.VelocityFactor.Y + wy) * speed
		vz := float64(s.velocity[z]) * speed

		s.currPos[x] = float32(float64(s.currPos[x]) + vx)
		s.currPos[y] = float32(float64(s.currPos[y]) + vy)
		s.currPos[z] = float32(float64(s.currPos[z]) + vz)

		dx := float64(s.initPos[x]) - float64(s.currPos[x])
		dy := float64(s.initPos[y]) - float64(s.currPos[y])
		dz := float64(s.initPos[z]) - float64(s.currPos[z])
		d := math.Sqrt(dx*dx + dy*dy + dz*dz)

		s.dist[i] = float32(d)
		s.rotation[i] = float32(float64(s.rotation[i]) + RotationStep)

		// dist keeps the pre-reset value until the next tick recomputes it.
		if d > float64(s.maxOffset[i]) {
			s.currPos[x] = s.initPos[x]
			s.currPos[y] = s.initPos[y]
			s.currPos[z] = s.initPos[z]
			resets++
		}
	}

	return resets
}

func (s *Set) Len() int { return s.n }

// LastResets reports how many particles snapped back during the last tick.
func (s *Set) LastResets() int { return s.lastResets }

func (s *Set) InitialPositions() []float32 { return s.initPos }
func (s *Set) CurrentPositions() []float32 { return s.currPos }
func (s *Set) Velocities() []float32       { return s.velocity }
func (s *Set) MaxOffsets() []float32       { return s.maxOffset }
func (s *Set) Distances() []float32        { return s.dist }
func (s *Set) Rotations() []float32        { return s.rotation }

// Attributes returns the buffers in the layout the particle material binds.
// The slices alias the set's storage and change on every tick.
func (s *Set) Attributes() []Attribute {
	return []Attribute{
		{Name: AttrPosition, ItemSize: 3, Data: s.initPos},
		{Name: AttrCurrentPos, ItemSize: 3, Data: s.currPos},
		{Name: AttrVelocity, ItemSize: 3, Data: s.velocity},
		{Name: AttrOffset, ItemSize: 1, Data: s.maxOffset},
		{Name: AttrDist, ItemSize: 1, Data: s.dist},
		{Name: AttrAngle, ItemSize: 1, Data: s.rotation},
	}
}
