package kangaroo

import (
	"encoding/hex"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Point is an affine secp256k1 point with normalized coordinates.
type Point struct {
	X, Y secp256k1.FieldVal
}

// scalarBasePoint returns k*G in affine coordinates.
func scalarBasePoint(k *secp256k1.ModNScalar) Point {
	var j secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(k, &j)
	j.ToAffine()
	return Point{X: j.X, Y: j.Y}
}

// addPoints returns p + q in affine coordinates.
func addPoints(p, q *Point) Point {
	var jp, jq, jr secp256k1.JacobianPoint
	var one secp256k1.FieldVal
	one.SetInt(1)
	jp = secp256k1.MakeJacobianPoint(&p.X, &p.Y, &one)
	jq = secp256k1.MakeJacobianPoint(&q.X, &q.Y, &one)
	secp256k1.AddNonConst(&jp, &jq, &jr)
	jr.ToAffine()
	return Point{X: jr.X, Y: jr.Y}
}

// doublePoint returns 2*p in affine coordinates.
func doublePoint(p *Point) Point {
	var jp, jr secp256k1.JacobianPoint
	var one secp256k1.FieldVal
	one.SetInt(1)
	jp = secp256k1.MakeJacobianPoint(&p.X, &p.Y, &one)
	secp256k1.DoubleNonConst(&jp, &jr)
	jr.ToAffine()
	return Point{X: jr.X, Y: jr.Y}
}

// equals reports whether two affine points are identical.
func (p *Point) equals(q *Point) bool {
	return p.X.Equals(&q.X) && p.Y.Equals(&q.Y)
}

// xBytes returns the big-endian encoding of the x coordinate.
func (p *Point) xBytes() [32]byte {
	var b [32]byte
	p.X.PutBytes(&b)
	return b
}

// xLow64 returns the least-significant 64 bits of the x coordinate.
// The pseudo-random jump function is keyed on this word.
func (p *Point) xLow64() uint64 {
	b := p.xBytes()
	return beUint64(b[24:32])
}

// xTop64 returns the most-significant 64 bits of the x coordinate.
// The distinguished-point test is keyed on this word.
func (p *Point) xTop64() uint64 {
	b := p.xBytes()
	return beUint64(b[0:8])
}

func beUint64(b []byte) uint64 {
	return uint64(b[0])<<56 | uint64(b[1])<<48 | uint64(b[2])<<40 | uint64(b[3])<<32 |
		uint64(b[4])<<24 | uint64(b[5])<<16 | uint64(b[6])<<8 | uint64(b[7])
}

// ParsePublicKey parses a compressed or uncompressed secp256k1 public key
// in hex (with or without a 0x prefix) into an affine point.
func ParsePublicKey(s string) (Point, error) {
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Point{}, err
	}
	pub, err := secp256k1.ParsePubKey(raw)
	if err != nil {
		return Point{}, err
	}
	var j secp256k1.JacobianPoint
	pub.AsJacobian(&j)
	j.ToAffine()
	return Point{X: j.X, Y: j.Y}, nil
}

// CompressedHex returns the compressed serialization of the point in hex.
func (p *Point) CompressedHex() string {
	x := new(secp256k1.FieldVal).Set(&p.X)
	y := new(secp256k1.FieldVal).Set(&p.Y)
	pub := secp256k1.NewPublicKey(x, y)
	return hex.EncodeToString(pub.SerializeCompressed())
}

// batchInvert replaces every element of vals with its modular inverse using
// Montgomery's trick: one field inversion plus 3*n multiplications.
// All elements must be nonzero and normalized.
func batchInvert(vals []secp256k1.FieldVal) {
	if len(vals) == 0 {
		return
	}
	// prefix[i] holds the product of vals[0..i-1].
	prefix := make([]secp256k1.FieldVal, len(vals))
	var acc secp256k1.FieldVal
	acc.SetInt(1)
	for i := range vals {
		prefix[i].Set(&acc)
		acc.Mul(&vals[i])
	}
	acc.Inverse()
	var inv secp256k1.FieldVal
	for i := len(vals) - 1; i >= 0; i-- {
		inv.Mul2(&acc, &prefix[i])
		acc.Mul(&vals[i])
		vals[i].Set(inv.Normalize())
	}
}
