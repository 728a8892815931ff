package kangaroo

import (
	crand "crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"math/big"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"go.uber.org/zap"
)

// Solution is one solved target: the private key and its public point.
type Solution struct {
	PrivateKey secp256k1.ModNScalar
	PublicKey  Point
}

// walkCounter keeps each worker's step counter on its own cache line. The
// worker is the only writer; the progress reader tolerates stale values.
type walkCounter struct {
	n uint64
	_ [56]byte
}

// Solver searches the interval [rangeStart, rangeEnd] of the scalar field
// for the private keys of a sequence of target public keys, using the
// parallelized Pollard kangaroo algorithm with distinguished points.
type Solver struct {
	log *zap.Logger

	rangeStart *big.Int
	rangeEnd   *big.Int
	targets    []Point

	// initDPSize is the user-requested distinguished-point size; negative
	// selects the computed optimum.
	initDPSize int

	jt *JumpTable

	// Derived by Run from the range width and walker count.
	rangeStartScalar  secp256k1.ModNScalar
	rangeHalfWidthNeg secp256k1.ModNScalar
	rangePower        int
	jumpModulo        uint64
	dpSize            int
	dpMask            uint64

	// Per-key state.
	target Point
	keyIdx int

	// tableLock serializes every distinguished-point insertion and also
	// guards the end-of-search transition, so no worker races past a
	// solved key.
	tableLock           sync.Mutex
	table               *HashTable
	collisionInSameHerd uint64
	solutions           []Solution

	endOfSearch atomic.Bool
	counters    []walkCounter
}

// NewSolver creates a solver for the given scalar interval and target keys.
func NewSolver(rangeStart, rangeEnd *big.Int, targets []Point) (*Solver, error) {
	if rangeStart == nil || rangeEnd == nil {
		return nil, fmt.Errorf("range bounds must not be nil")
	}
	if rangeStart.Sign() < 0 || rangeEnd.Cmp(rangeStart) < 0 {
		return nil, fmt.Errorf("invalid range [%s, %s]", rangeStart.Text(16), rangeEnd.Text(16))
	}
	if rangeEnd.BitLen() > 256 {
		return nil, fmt.Errorf("range end exceeds 256 bits")
	}
	return &Solver{
		log:        zap.NewNop(),
		rangeStart: new(big.Int).Set(rangeStart),
		rangeEnd:   new(big.Int).Set(rangeEnd),
		targets:    targets,
		initDPSize: -1,
		jt:         NewJumpTable(),
		table:      NewHashTable(),
	}, nil
}

// WithLogger sets the logger used for diagnostics.
func (s *Solver) WithLogger(log *zap.Logger) *Solver {
	s.log = log
	return s
}

// WithDPSize overrides the distinguished-point size. Negative values select
// the computed optimum; values above 64 are clamped.
func (s *Solver) WithDPSize(dpSize int) *Solver {
	s.initDPSize = dpSize
	return s
}

// Solutions returns the keys solved so far, in target order.
func (s *Solver) Solutions() []Solution {
	s.tableLock.Lock()
	defer s.tableLock.Unlock()
	out := make([]Solution, len(s.solutions))
	copy(out, s.solutions)
	return out
}

// CollisionsInSameHerd returns the number of intra-herd collisions observed
// while solving the current (or last) target.
func (s *Solver) CollisionsInSameHerd() uint64 {
	s.tableLock.Lock()
	defer s.tableLock.Unlock()
	return s.collisionInSameHerd
}

// Run solves every target key in sequence using numWorkers CPU workers plus
// one driver per external batch walker. It blocks until all targets are
// solved.
func (s *Solver) Run(numWorkers int, walkers []BatchWalker) error {
	if numWorkers < 0 {
		return fmt.Errorf("negative worker count %d", numWorkers)
	}
	if numWorkers == 0 && len(walkers) == 0 {
		return fmt.Errorf("no walkers: need at least one CPU worker or batch walker")
	}

	t0 := time.Now()

	totalWalkers := numWorkers * HerdSize
	for _, w := range walkers {
		totalWalkers += w.KangarooCount()
	}
	s.calibrate(totalWalkers)

	s.counters = make([]walkCounter, numWorkers+len(walkers))

	for i := range s.targets {
		s.keyIdx = i
		s.target = s.targets[i]
		s.endOfSearch.Store(false)
		s.collisionInSameHerd = 0
		for c := range s.counters {
			atomic.StoreUint64(&s.counters[c].n, 0)
		}

		var wg sync.WaitGroup
		for w := 0; w < numWorkers; w++ {
			wg.Add(1)
			go func(thId int) {
				defer wg.Done()
				s.solveKeyCPU(thId)
			}(w)
		}
		for w, bw := range walkers {
			wg.Add(1)
			go func(thId int, bw BatchWalker) {
				defer wg.Done()
				s.solveKeyBatch(thId, bw)
			}(numWorkers+w, bw)
		}

		stop := make(chan struct{})
		var progressDone sync.WaitGroup
		progressDone.Add(1)
		go func() {
			defer progressDone.Done()
			s.reportProgress(stop)
		}()

		wg.Wait()
		close(stop)
		progressDone.Wait()

		s.tableLock.Lock()
		s.table.Reset()
		s.tableLock.Unlock()
	}

	fmt.Printf("\nDone: total time %s\n", time.Since(t0).Round(time.Millisecond))
	return nil
}

// calibrate derives the walk parameters from the range width and the total
// walker count: jump modulo, half-width shift, and distinguished-point size.
func (s *Solver) calibrate(totalWalkers int) {
	width := new(big.Int).Sub(s.rangeEnd, s.rangeStart)
	s.rangePower = width.BitLen()
	if s.rangePower == 0 {
		s.rangePower = 1
	}
	s.jumpModulo = uint64(s.rangePower/2 + 1)
	if s.jumpModulo > 128 {
		s.jumpModulo = 128
	}

	var buf [32]byte
	s.rangeStart.FillBytes(buf[:])
	s.rangeStartScalar.SetBytes(&buf)

	halfWidth := new(big.Int).Rsh(width, 1)
	halfWidth.FillBytes(buf[:])
	s.rangeHalfWidthNeg.SetBytes(&buf)
	s.rangeHalfWidthNeg.Negate()

	// The expected walk length before hitting a DP is 2^dpSize. If that
	// approaches the expected rendezvous time sqrt(2^rangePower)/walkers,
	// most of the work is wasted on paths too short to collide.
	optimalDP := int(float64(s.rangePower)/2.0 - math.Log2(float64(totalWalkers)) - 2)
	if optimalDP < 0 {
		optimalDP = 0
	}
	s.log.Info("search parameters",
		zap.Int("rangePower", s.rangePower),
		zap.Uint64("jumpModulo", s.jumpModulo),
		zap.Float64("log2Walkers", math.Log2(float64(totalWalkers))),
		zap.Int("maxDP", optimalDP))

	if s.initDPSize > optimalDP {
		s.log.Warn("DP size is too large and may cause significant overload; "+
			"decrease the walker count or the DP size",
			zap.Int("dpSize", s.initDPSize), zap.Int("maxDP", optimalDP))
	}
	s.dpSize = s.initDPSize
	if s.dpSize < 0 {
		s.dpSize = optimalDP
	}
	if s.dpSize > 64 {
		s.dpSize = 64
	}
	s.dpMask = dpMask(s.dpSize)
	s.log.Info("DP size selected", zap.Int("dpSize", s.dpSize),
		zap.String("dpMask", fmt.Sprintf("0x%016x", s.dpMask)))
}

// solveKeyCPU is one CPU worker: it owns a herd of kangaroos, half tame and
// half wild, and walks them until the end of the search.
func (s *Solver) solveKeyCPU(thId int) {
	rng := newRNG()
	h := &herd{}
	for g := range h.kangaroos {
		h.kangaroos[g] = s.newKangaroo(rng, HerdType(g%2))
	}
	if s.keyIdx == 0 {
		s.log.Info("cpu worker started", zap.Int("worker", thId), zap.Int("kangaroos", HerdSize))
	}
	s.runHerd(thId, rng, h)
}

// runHerd advances the herd until endOfSearch, reporting distinguished
// points to the central table and respawning stalled or colliding walks.
func (s *Solver) runHerd(thId int, rng *rand.Rand, h *herd) {
	for !s.endOfSearch.Load() {
		h.step(s.jt, s.jumpModulo)

		for g := range h.kangaroos {
			if h.stalled[g] {
				h.kangaroos[g] = s.newKangaroo(rng, h.kangaroos[g].Type)
				continue
			}
			k := h.kangaroos[g]
			if !isDP(k.Pos.xTop64(), s.dpMask) {
				continue
			}
			s.tableLock.Lock()
			if !s.endOfSearch.Load() {
				if s.recordDP(&k.Pos.X, &k.Distance, k.Type) {
					h.kangaroos[g] = s.newKangaroo(rng, k.Type)
				}
			}
			s.tableLock.Unlock()
		}

		atomic.AddUint64(&s.counters[thId].n, HerdSize)
	}
}

// recordDP presents one distinguished point to the table and reacts to the
// outcome. It must be called with tableLock held and endOfSearch false.
// It returns true when the reporting kangaroo must be respawned.
func (s *Solver) recordDP(x *secp256k1.FieldVal, d *secp256k1.ModNScalar, t HerdType) bool {
	res, prev := s.table.Add(x, d, t)
	switch res {
	case DPStored:
		return false

	case DPMatchSameHerd:
		// The two walks shadow each other forever; restart the reporter.
		s.collisionInSameHerd++
		return true

	default: // DPMatchCrossHerd
		pk, ok := s.resolveCollision(d, t, prev)
		if !ok {
			s.log.Warn("unexpected wrong collision, respawning kangaroo",
				zap.Int("key", s.keyIdx), zap.String("type", t.String()))
			return true
		}

		pub := scalarBasePoint(&pk)
		var b [32]byte
		pk.PutBytes(&b)
		fmt.Printf("\nKey#%2d Pub:  0x%s\n", s.keyIdx, pub.CompressedHex())
		fmt.Printf("       Priv: 0x%s\n", hex.EncodeToString(b[:]))

		s.solutions = append(s.solutions, Solution{PrivateKey: pk, PublicKey: pub})
		s.endOfSearch.Store(true)
		return false
	}
}

// reportProgress aggregates per-worker counters every couple of seconds and
// emits a single overwritten throughput line.
func (s *Solver) reportProgress(stop <-chan struct{}) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	var last uint64
	lastTime := time.Now()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			var total uint64
			for i := range s.counters {
				total += atomic.LoadUint64(&s.counters[i].n)
			}
			mkeys := float64(total-last) / now.Sub(lastTime).Seconds() / 1e6
			s.tableLock.Lock()
			dead := s.collisionInSameHerd
			dps := s.table.Len()
			s.tableLock.Unlock()
			count := 0.0
			if total > 0 {
				count = math.Log2(float64(total))
			}
			fmt.Printf("\r[%.2f MKey/s][Count 2^%.2f][DP %d][Dead %d]  ", mkeys, count, dps, dead)
			last = total
			lastTime = now
		}
	}
}

// newRNG returns a statistically uniform generator with a private seed.
// Workers must not share correlated seeds: overlapping starting distances
// lower the collision probability of the whole search.
func newRNG() *rand.Rand {
	var seed [8]byte
	if _, err := crand.Read(seed[:]); err != nil {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return rand.New(rand.NewSource(int64(binary.LittleEndian.Uint64(seed[:]))))
}
