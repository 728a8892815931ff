package kangaroo

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"go.uber.org/zap"
)

const (
	// NBRun is the number of batched steps one Launch call executes on an
	// external batch walker before it reports its distinguished points.
	NBRun = 16

	// ItemSize is the wire size of one reported distinguished point:
	// x (32) | distance (32) | kangaroo index (8), little-endian limbs.
	ItemSize = 72
)

// Item is one distinguished point reported by an external batch walker.
// The kangaroo index identifies the reporting walker; its parity gives the
// herd type.
type Item struct {
	X    secp256k1.FieldVal
	D    secp256k1.ModNScalar
	KIdx uint64
}

// BatchWalker is the contract an accelerated walker backend (typically a
// GPU) must satisfy. One Launch executes NBRun batched jumps across every
// kangaroo it holds and returns the distinguished points encountered; when
// more points were found than the backend can buffer, overflow is true and
// the oldest results are retained. The CPU core is complete without any
// implementation of this interface.
type BatchWalker interface {
	// Name identifies the backend in logs.
	Name() string
	// KangarooCount is the number of kangaroos the backend walks, fixed at
	// construction time.
	KangarooCount() int
	// SetParams installs the distinguished-point mask and the jump modulo.
	SetParams(dpMask, jumpModulo uint64) error
	// SetKangaroos uploads the full starting state, one entry per kangaroo.
	SetKangaroos(px, py []secp256k1.FieldVal, d []secp256k1.ModNScalar) error
	// SetKangaroo replaces a single walker, used to respawn after an
	// intra-herd collision.
	SetKangaroo(kIdx uint64, px, py *secp256k1.FieldVal, d *secp256k1.ModNScalar) error
	// Launch runs NBRun steps and drains the found distinguished points.
	Launch() (items []Item, overflow bool, err error)
}

// EncodeItem serializes an item to its 72-byte wire form.
func EncodeItem(it *Item) [ItemSize]byte {
	var out [ItemSize]byte
	var be [32]byte
	it.X.PutBytes(&be)
	putLE256(out[0:32], be)
	it.D.PutBytes(&be)
	putLE256(out[32:64], be)
	binary.LittleEndian.PutUint64(out[64:72], it.KIdx)
	return out
}

// DecodeItem parses one 72-byte wire item.
func DecodeItem(b []byte) (Item, error) {
	if len(b) != ItemSize {
		return Item{}, fmt.Errorf("item must be %d bytes, got %d", ItemSize, len(b))
	}
	var it Item
	var be [32]byte
	getLE256(&be, b[0:32])
	it.X.SetBytes(&be)
	getLE256(&be, b[32:64])
	it.D.SetBytes(&be)
	it.KIdx = binary.LittleEndian.Uint64(b[64:72])
	return it, nil
}

// putLE256 writes a big-endian 256-bit value as little-endian bytes.
func putLE256(dst []byte, be [32]byte) {
	for i := 0; i < 32; i++ {
		dst[i] = be[31-i]
	}
}

func getLE256(dst *[32]byte, src []byte) {
	for i := 0; i < 32; i++ {
		dst[i] = src[31-i]
	}
}

// solveKeyBatch drives one external batch walker: it creates the starting
// kangaroos host-side, uploads them, then loops Launch and feeds every
// reported distinguished point through the central table.
func (s *Solver) solveKeyBatch(thId int, bw BatchWalker) {
	rng := newRNG()
	n := bw.KangarooCount()
	px := make([]secp256k1.FieldVal, n)
	py := make([]secp256k1.FieldVal, n)
	d := make([]secp256k1.ModNScalar, n)
	for i := 0; i < n; i++ {
		k := s.newKangaroo(rng, HerdType(i%2))
		px[i] = k.Pos.X
		py[i] = k.Pos.Y
		d[i] = k.Distance
	}

	if err := bw.SetParams(s.dpMask, s.jumpModulo); err != nil {
		s.log.Error("batch walker rejected params", zap.String("walker", bw.Name()), zap.Error(err))
		return
	}
	if err := bw.SetKangaroos(px, py, d); err != nil {
		s.log.Error("batch walker rejected kangaroos", zap.String("walker", bw.Name()), zap.Error(err))
		return
	}
	if s.keyIdx == 0 {
		s.log.Info("batch walker started", zap.String("walker", bw.Name()), zap.Int("kangaroos", n))
	}

	warnedOverflow := false
	for !s.endOfSearch.Load() {
		items, overflow, err := bw.Launch()
		if err != nil {
			s.log.Error("batch walker launch failed", zap.String("walker", bw.Name()), zap.Error(err))
			return
		}
		atomic.AddUint64(&s.counters[thId].n, uint64(n)*NBRun)

		if overflow && !warnedOverflow {
			s.log.Warn("batch walker output overflow, dropping distinguished points",
				zap.String("walker", bw.Name()))
			warnedOverflow = true
		}
		if len(items) == 0 {
			continue
		}

		s.tableLock.Lock()
		for i := range items {
			if s.endOfSearch.Load() {
				break
			}
			it := &items[i]
			t := HerdType(it.KIdx % 2)
			if s.recordDP(&it.X, &it.D, t) {
				k := s.newKangaroo(rng, t)
				if err := bw.SetKangaroo(it.KIdx, &k.Pos.X, &k.Pos.Y, &k.Distance); err != nil {
					s.log.Error("batch walker kangaroo respawn failed",
						zap.String("walker", bw.Name()), zap.Uint64("kIdx", it.KIdx), zap.Error(err))
				}
			}
		}
		s.tableLock.Unlock()
	}
}
