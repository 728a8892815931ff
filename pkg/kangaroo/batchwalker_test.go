package kangaroo

import (
	"math/big"
	"testing"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/require"
)

func TestItemWireFormat(t *testing.T) {
	var it Item
	it.X.SetInt(1)
	it.D = scalarFromInt(t, 0x0102)
	it.KIdx = 0xDEADBEEF

	b := EncodeItem(&it)

	// Little-endian limbs: the least significant byte comes first.
	require.Equal(t, byte(1), b[0])
	require.Equal(t, byte(0x02), b[32])
	require.Equal(t, byte(0x01), b[33])
	require.Equal(t, byte(0xEF), b[64])

	back, err := DecodeItem(b[:])
	require.NoError(t, err)
	require.True(t, it.X.Equals(&back.X))
	require.True(t, it.D.Equals(&back.D))
	require.Equal(t, it.KIdx, back.KIdx)
}

func TestItemWireFormatRoundTrip(t *testing.T) {
	p := pointFromInt(t, 1234567)
	var it Item
	it.X.Set(&p.X)
	it.D = scalarFromBig(t, new(big.Int).Lsh(big.NewInt(3), 140))
	it.KIdx = 513

	b := EncodeItem(&it)
	back, err := DecodeItem(b[:])
	require.NoError(t, err)
	require.True(t, it.X.Equals(&back.X))
	require.True(t, it.D.Equals(&back.D))
	require.Equal(t, it.KIdx, back.KIdx)
}

func TestDecodeItemRejectsShortInput(t *testing.T) {
	_, err := DecodeItem(make([]byte, ItemSize-1))
	require.Error(t, err)
}

// fakeWalker is a host-side BatchWalker that runs the reference walk, used
// to exercise the solver's driver loop end to end.
type fakeWalker struct {
	jt         *JumpTable
	dpMask     uint64
	jumpModulo uint64
	herd       herd
	maxFound   int
}

func newFakeWalker() *fakeWalker {
	return &fakeWalker{jt: NewJumpTable(), maxFound: 4096}
}

func (w *fakeWalker) Name() string       { return "fake" }
func (w *fakeWalker) KangarooCount() int { return HerdSize }

func (w *fakeWalker) SetParams(dpMask, jumpModulo uint64) error {
	w.dpMask = dpMask
	w.jumpModulo = jumpModulo
	return nil
}

func (w *fakeWalker) SetKangaroos(px, py []secp256k1.FieldVal, d []secp256k1.ModNScalar) error {
	for i := range w.herd.kangaroos {
		w.herd.kangaroos[i] = &Kangaroo{
			Pos:      Point{X: px[i], Y: py[i]},
			Distance: d[i],
			Type:     HerdType(i % 2),
		}
	}
	return nil
}

func (w *fakeWalker) SetKangaroo(kIdx uint64, px, py *secp256k1.FieldVal, d *secp256k1.ModNScalar) error {
	w.herd.kangaroos[kIdx] = &Kangaroo{
		Pos:      Point{X: *px, Y: *py},
		Distance: *d,
		Type:     HerdType(kIdx % 2),
	}
	return nil
}

func (w *fakeWalker) Launch() ([]Item, bool, error) {
	var found []Item
	overflow := false
	for run := 0; run < NBRun; run++ {
		w.herd.step(w.jt, w.jumpModulo)
		for g := range w.herd.kangaroos {
			if w.herd.stalled[g] {
				continue
			}
			k := w.herd.kangaroos[g]
			if !isDP(k.Pos.xTop64(), w.dpMask) {
				continue
			}
			if len(found) >= w.maxFound {
				overflow = true
				continue
			}
			var it Item
			it.X.Set(&k.Pos.X)
			it.D.Set(&k.Distance)
			it.KIdx = uint64(g)
			found = append(found, it)
		}
	}
	return found, overflow, nil
}

func TestSolveWithBatchWalkerOnly(t *testing.T) {
	target := pointFromInt(t, 23456)
	s, err := NewSolver(big.NewInt(0), big.NewInt(65535), []Point{target})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Run(0, []BatchWalker{newFakeWalker()}) }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(120 * time.Second):
		t.Fatal("batch walker search did not terminate in time")
	}

	requireSolved(t, s, 0, big.NewInt(23456))
}

func TestSolveWithMixedWalkers(t *testing.T) {
	target := pointFromInt(t, 54321)
	s, err := NewSolver(big.NewInt(0), big.NewInt(65535), []Point{target})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Run(1, []BatchWalker{newFakeWalker()}) }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(120 * time.Second):
		t.Fatal("mixed search did not terminate in time")
	}

	requireSolved(t, s, 0, big.NewInt(54321))
}
