package kangaroo

import "github.com/decred/dcrd/dcrec/secp256k1/v4"

// jumpTableSize is deliberately larger than any reachable jump index so the
// jump modulo can vary with the range width without rebuilding the table.
const jumpTableSize = 129

// JumpTable holds the precomputed jumps of the pseudo-random walk:
// distances[i] = 2^i mod n and points[i] = distances[i]*G. It is read-only
// after construction and shared by every worker without synchronization.
type JumpTable struct {
	distances [jumpTableSize]secp256k1.ModNScalar
	points    [jumpTableSize]Point
}

// NewJumpTable precomputes the power-of-two jump distances and points by
// repeated doubling from the generator.
func NewJumpTable() *JumpTable {
	jt := &JumpTable{}
	jt.distances[0].SetInt(1)
	jt.points[0] = scalarBasePoint(&jt.distances[0])
	for i := 1; i < jumpTableSize; i++ {
		jt.distances[i].Add2(&jt.distances[i-1], &jt.distances[i-1])
		jt.points[i] = doublePoint(&jt.points[i-1])
	}
	return jt
}
