package particles

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func randomPositions(n int, seed int64) []float32 {
	r := rand.New(rand.NewSource(seed))
	pos := make([]float32, n*3)
	for i := range pos {
		pos[i] = float32(r.Float64()*8 - 4)
	}
	return pos
}

func cloneBuf(b []float32) []float32 {
	c := make([]float32, len(b))
	copy(c, b)
	return c
}

var _ = Describe("Initialize", func() {
	It("copies positions into both anchor and current buffers", func() {
		pos := []float32{1, 2, 3, -4, -5, -6}
		s := Initialize(pos, NewSource(1))

		Expect(s.Len()).To(Equal(2))
		Expect(s.InitialPositions()).To(Equal(pos))
		Expect(s.CurrentPositions()).To(Equal(pos))

		pos[0] = 99
		Expect(s.InitialPositions()[0]).To(Equal(float32(1)))
	})

	It("allocates every buffer at the particle count", func() {
		s := Initialize(randomPositions(17, 3), NewSource(1))

		Expect(s.InitialPositions()).To(HaveLen(51))
		Expect(s.CurrentPositions()).To(HaveLen(51))
		Expect(s.Velocities()).To(HaveLen(51))
		Expect(s.MaxOffsets()).To(HaveLen(17))
		Expect(s.Distances()).To(HaveLen(17))
		Expect(s.Rotations()).To(HaveLen(17))
	})

	It("draws randomized attributes inside their ranges", func() {
		s := Initialize(randomPositions(500, 5), NewSource(11))

		for i := 0; i < s.Len(); i++ {
			Expect(s.MaxOffsets()[i]).To(BeNumerically(">=", 1.5))
			Expect(s.MaxOffsets()[i]).To(BeNumerically("<=", 7.0))

			Expect(s.Velocities()[i*3]).To(BeNumerically(">=", 0.5))
			Expect(s.Velocities()[i*3]).To(BeNumerically("<=", 1.0))
			Expect(s.Velocities()[i*3+1]).To(BeNumerically(">=", 0.5))
			Expect(s.Velocities()[i*3+1]).To(BeNumerically("<=", 1.0))
			Expect(s.Velocities()[i*3+2]).To(BeNumerically(">=", 0.0))
			Expect(s.Velocities()[i*3+2]).To(BeNumerically("<=", 0.1))

			Expect(s.Distances()[i]).To(Equal(float32(InitialDistance)))

			Expect(s.Rotations()[i]).To(BeNumerically(">=", 0.0))
			Expect(s.Rotations()[i]).To(BeNumerically("<=", float32(2*math.Pi)))
		}
	})

	It("is deterministic for a fixed seed", func() {
		pos := randomPositions(64, 9)
		a := Initialize(pos, NewSource(42))
		b := Initialize(pos, NewSource(42))

		Expect(a.MaxOffsets()).To(Equal(b.MaxOffsets()))
		Expect(a.Velocities()).To(Equal(b.Velocities()))
		Expect(a.Rotations()).To(Equal(b.Rotations()))
	})

	It("produces an empty, inert set for no positions", func() {
		s := Initialize(nil, NewSource(1))
		Expect(s.Len()).To(Equal(0))

		Expect(func() { s.Tick(DefaultParams()) }).NotTo(Panic())
		Expect(func() { s.TickParallel(DefaultParams(), 4) }).NotTo(Panic())

		for _, attr := range s.Attributes() {
			Expect(attr.Data).To(BeEmpty(), attr.Name)
			Expect(attr.Count()).To(Equal(0))
		}
		Expect(s.LastResets()).To(Equal(0))
	})

	It("panics on a buffer that is not packed xyz", func() {
		Expect(func() { Initialize([]float32{1, 2}, nil) }).To(Panic())
	})

	It("falls back to the global source when none is given", func() {
		s := Initialize(randomPositions(4, 1), nil)
		Expect(s.Len()).To(Equal(4))
	})
})

var _ = Describe("Tick", func() {
	var (
		s      *Set
		params Params
	)

	BeforeEach(func() {
		s = Initialize(randomPositions(256, 21), NewSource(7))
		params = DefaultParams()
		params.WaveAmplitude = 0.5
	})

	It("never moves the anchors", func() {
		before := cloneBuf(s.InitialPositions())
		for k := 0; k < 200; k++ {
			s.Tick(params)
		}
		Expect(s.InitialPositions()).To(Equal(before))
	})

	It("never changes the base velocities or offsets", func() {
		vel := cloneBuf(s.Velocities())
		off := cloneBuf(s.MaxOffsets())
		for k := 0; k < 50; k++ {
			s.Tick(params)
		}
		Expect(s.Velocities()).To(Equal(vel))
		Expect(s.MaxOffsets()).To(Equal(off))
	})

	It("advances rotation by a fixed step per tick", func() {
		expected := cloneBuf(s.Rotations())
		for k := 0; k < 100; k++ {
			s.Tick(params)
			for i := range expected {
				expected[i] = float32(float64(expected[i]) + RotationStep)
			}
		}
		Expect(s.Rotations()).To(Equal(expected))

		rot0 := s.Rotations()[0]
		s.Tick(params)
		Expect(s.Rotations()[0]).To(BeNumerically(">", rot0))
	})

	It("keeps every particle within its offset or at its anchor", func() {
		params.SpeedFactor = 0.3
		params.WaveAmplitude = 2
		init := s.InitialPositions()

		for k := 0; k < 300; k++ {
			s.Tick(params)
			curr := s.CurrentPositions()
			for i := 0; i < s.Len(); i++ {
				atAnchor := curr[i*3] == init[i*3] && curr[i*3+1] == init[i*3+1] && curr[i*3+2] == init[i*3+2]
				if !atAnchor {
					Expect(s.Distances()[i]).To(BeNumerically("<=", s.MaxOffsets()[i]))
				}
			}
		}
	})

	It("keeps distance consistent with the current position when no reset happened", func() {
		s.Tick(params)
		init, curr := s.InitialPositions(), s.CurrentPositions()
		for i := 0; i < s.Len(); i++ {
			dx := float64(init[i*3] - curr[i*3])
			dy := float64(init[i*3+1] - curr[i*3+1])
			dz := float64(init[i*3+2] - curr[i*3+2])
			d := math.Sqrt(dx*dx + dy*dy + dz*dz)
			if d != 0 {
				Expect(float64(s.Distances()[i])).To(BeNumerically("~", d, 1e-5))
			}
		}
	})

	It("ignores the sign of the speed factor", func() {
		other := Initialize(randomPositions(256, 21), NewSource(7))
		neg := params
		neg.SpeedFactor = -params.SpeedFactor

		for k := 0; k < 20; k++ {
			s.Tick(params)
			other.Tick(neg)
		}
		Expect(other.CurrentPositions()).To(Equal(s.CurrentPositions()))
	})

	It("does not move anything with a zero speed factor", func() {
		params.SpeedFactor = 0
		before := cloneBuf(s.CurrentPositions())
		s.Tick(params)
		Expect(s.CurrentPositions()).To(Equal(before))
		Expect(s.LastResets()).To(Equal(0))
	})

	Context("with a single hand-placed particle", func() {
		BeforeEach(func() {
			s = Initialize([]float32{0, 0, 0}, NewSource(1))
			s.velocity[0], s.velocity[1], s.velocity[2] = 0.5, 0.5, 0.05
			s.maxOffset[0] = 5
			params = Params{SpeedFactor: 1, VelocityFactor: VelocityFactor{X: 1, Y: 1}}
		})

		It("moves by the base velocity when the wave is flat at the origin", func() {
			Expect(s.Distances()[0]).To(Equal(float32(InitialDistance)))

			s.Tick(params)

			Expect(s.CurrentPositions()).To(Equal([]float32{0.5, 0.5, 0.05}))
			Expect(float64(s.Distances()[0])).To(BeNumerically("~", math.Sqrt(0.5025), 1e-6))
			Expect(s.LastResets()).To(Equal(0))
		})

		It("applies the velocity factor per axis", func() {
			params.VelocityFactor = VelocityFactor{X: 2, Y: 0}
			s.Tick(params)
			Expect(s.CurrentPositions()).To(Equal([]float32{1, 0, 0.05}))
		})

		It("resets in the same tick the offset is first exceeded", func() {
			s.maxOffset[0] = 0.001

			s.Tick(params)

			Expect(s.CurrentPositions()).To(Equal(s.InitialPositions()))
			Expect(s.LastResets()).To(Equal(1))
			Expect(s.Distances()[0]).To(BeNumerically(">", 0.001))
		})

		It("leaves the stale distance until the next tick", func() {
			s.maxOffset[0] = 0.001
			s.Tick(params)
			stale := s.Distances()[0]

			params.SpeedFactor = 0
			s.Tick(params)

			Expect(stale).To(BeNumerically(">", 0.7))
			Expect(s.Distances()[0]).To(Equal(float32(0)))
		})
	})
})

var _ = Describe("TickParallel", func() {
	It("matches the serial tick bit for bit", func() {
		pos := randomPositions(10000, 77)
		serial := Initialize(pos, NewSource(3))
		parallel := Initialize(pos, NewSource(3))

		params := DefaultParams()
		params.SpeedFactor = 0.08
		params.WaveAmplitude = 1.2

		for k := 0; k < 60; k++ {
			serial.Tick(params)
			parallel.TickParallel(params, 4)
			Expect(parallel.LastResets()).To(Equal(serial.LastResets()))
		}

		Expect(parallel.CurrentPositions()).To(Equal(serial.CurrentPositions()))
		Expect(parallel.Distances()).To(Equal(serial.Distances()))
		Expect(parallel.Rotations()).To(Equal(serial.Rotations()))
	})

	It("covers every index exactly once", func() {
		hits := make([]int32, 9001)
		ParallelFor(len(hits), 100, 7, func(start, end int) {
			for i := start; i < end; i++ {
				hits[i]++
			}
		})
		for i, h := range hits {
			Expect(h).To(Equal(int32(1)), "index %d", i)
		}
	})
})

var _ = Describe("Rebind", func() {
	It("discards previous state and resizes", func() {
		s := Initialize(randomPositions(32, 1), NewSource(1))
		for k := 0; k < 10; k++ {
			s.Tick(DefaultParams())
		}

		next := randomPositions(5, 2)
		s.Rebind(next, NewSource(2))

		Expect(s.Len()).To(Equal(5))
		Expect(s.InitialPositions()).To(Equal(next))
		Expect(s.CurrentPositions()).To(Equal(next))
		for _, d := range s.Distances() {
			Expect(d).To(Equal(float32(InitialDistance)))
		}
		Expect(s.LastResets()).To(Equal(0))
	})

	It("can rebind to an empty mesh", func() {
		s := Initialize(randomPositions(3, 1), NewSource(1))
		s.Rebind(nil, NewSource(1))
		Expect(s.Len()).To(Equal(0))
	})
})

var _ = Describe("Attributes", func() {
	It("exposes named views over live storage", func() {
		s := Initialize(randomPositions(3, 1), NewSource(1))
		attrs := s.Attributes()

		names := make([]string, 0, len(attrs))
		for _, a := range attrs {
			names = append(names, a.Name)
			Expect(a.Count()).To(Equal(3))
		}
		Expect(names).To(ConsistOf(AttrPosition, AttrCurrentPos, AttrVelocity, AttrOffset, AttrDist, AttrAngle))

		s.Tick(DefaultParams())
		for _, a := range attrs {
			if a.Name == AttrAngle {
				Expect(a.Data).To(Equal(s.Rotations()))
			}
		}
	})
})

var _ = Describe("WaveOffset", func() {
	It("is flat at the origin for any amplitude", func() {
		for _, amp := range []float64{0, 1, 5} {
			wx, wy := WaveOffset(0, 0, amp)
			Expect(wx).To(Equal(0.0))
			Expect(wy).To(Equal(0.0))
		}
	})

	It("sums the four harmonics", func() {
		x, y, a := 0.3, -1.1, 0.25
		wantX := math.Sin(y*2)*(0.8+a) + math.Sin(y*5)*(0.2+a) + math.Sin(y*8)*(0.8+a) + math.Sin(y*3)*(0.8+a)
		wantY := math.Sin(x*2)*(0.6+a) + math.Sin(x*1)*(0.9+a) + math.Sin(x*5)*(0.6+a) + math.Sin(x*7)*(0.6+a)

		wx, wy := WaveOffset(x, y, a)
		Expect(wx).To(BeNumerically("~", wantX, 1e-12))
		Expect(wy).To(BeNumerically("~", wantY, 1e-12))
	})
})
