package kangaroo

import "github.com/decred/dcrd/dcrec/secp256k1/v4"

// HerdSize is the number of kangaroos advanced together by one CPU worker.
// One herd step amortizes a single field inversion across all of them.
const HerdSize = 128

// herd is the batched walk state owned by one worker. The scratch buffers
// are reused across steps so the hot loop allocates nothing.
type herd struct {
	kangaroos [HerdSize]*Kangaroo
	dx        [HerdSize]secp256k1.FieldVal
	jump      [HerdSize]int
	stalled   [HerdSize]bool
}

// step advances every kangaroo in the herd by one jump of the pseudo-random
// walk. The jump index is taken from the low 64 bits of the current x
// coordinate, so the walk is deterministic in the position alone.
//
// A kangaroo that lands exactly on its own jump point would need a point
// doubling and produces dx = 0, which the batch inversion cannot process.
// Such lanes get a neutral dx of 1, take one garbage jump, and are reported
// through stalled so the caller respawns them.
func (h *herd) step(jt *JumpTable, jumpModulo uint64) {
	for g := range h.kangaroos {
		k := h.kangaroos[g]
		j := int(k.Pos.xLow64() % jumpModulo)
		h.jump[g] = j
		var negX secp256k1.FieldVal
		negX.NegateVal(&jt.points[j].X, 1)
		h.dx[g].Add2(&k.Pos.X, &negX).Normalize()
		if h.stalled[g] = h.dx[g].IsZero(); h.stalled[g] {
			h.dx[g].SetInt(1)
		}
	}

	batchInvert(h.dx[:])

	var dy, s, s2, rx, ry, neg secp256k1.FieldVal
	for g := range h.kangaroos {
		k := h.kangaroos[g]
		p1 := &jt.points[h.jump[g]]

		// Affine addition: s = (y2-y1)/(x2-x1), rx = s^2-x1-x2,
		// ry = s*(x2-rx)-y2, with (x1,y1) the jump point.
		dy.NegateVal(&p1.Y, 1)
		dy.Add(&k.Pos.Y)
		s.Mul2(&dy, &h.dx[g])
		s2.SquareVal(&s)

		rx.NegateVal(&p1.X, 1)
		rx.Add(&s2)
		neg.NegateVal(&k.Pos.X, 1)
		rx.Add(&neg)
		rx.Normalize()

		ry.NegateVal(&rx, 1)
		ry.Add(&k.Pos.X)
		ry.Mul(&s)
		neg.NegateVal(&k.Pos.Y, 1)
		ry.Add(&neg)
		ry.Normalize()

		k.Pos.X.Set(&rx)
		k.Pos.Y.Set(&ry)
		k.Distance.Add(&jt.distances[h.jump[g]])
	}
}

// dpMask returns the distinguished-point mask for the given DP size: the top
// dpSize bits of the 64-bit word are set. Size 0 makes every point
// distinguished; sizes above 64 are clamped.
func dpMask(dpSize int) uint64 {
	if dpSize <= 0 {
		return 0
	}
	if dpSize > 64 {
		dpSize = 64
	}
	return ^(uint64(1)<<(64-uint(dpSize)) - 1)
}

// isDP reports whether the top 64 bits of an x coordinate mark a
// distinguished point under the mask.
func isDP(xTop64, mask uint64) bool {
	return xTop64&mask == 0
}
