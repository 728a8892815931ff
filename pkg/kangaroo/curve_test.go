package kangaroo

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/require"
)

func scalarFromBig(t *testing.T, v *big.Int) secp256k1.ModNScalar {
	t.Helper()
	var buf [32]byte
	v.FillBytes(buf[:])
	var s secp256k1.ModNScalar
	s.SetBytes(&buf)
	return s
}

func scalarFromInt(t *testing.T, v int64) secp256k1.ModNScalar {
	t.Helper()
	return scalarFromBig(t, big.NewInt(v))
}

func pointFromInt(t *testing.T, v int64) Point {
	t.Helper()
	k := scalarFromInt(t, v)
	return scalarBasePoint(&k)
}

func TestBatchInvert(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for _, size := range []int{1, 2, 7, HerdSize} {
		vals := make([]secp256k1.FieldVal, size)
		orig := make([]secp256k1.FieldVal, size)
		for i := range vals {
			buf := make([]byte, 32)
			rng.Read(buf)
			buf[0] = 0 // keep below the field prime
			vals[i].SetByteSlice(buf)
			if vals[i].IsZero() {
				vals[i].SetInt(1)
			}
			orig[i].Set(&vals[i])
		}

		batchInvert(vals)

		for i := range vals {
			var prod secp256k1.FieldVal
			prod.Mul2(&vals[i], &orig[i]).Normalize()
			require.True(t, prod.IsOne(), "size %d lane %d: inverse times original is not 1", size, i)
		}
	}
}

func TestBatchInvertMatchesSingleInverse(t *testing.T) {
	var v, want secp256k1.FieldVal
	v.SetInt(12345)
	want.Set(&v).Inverse()
	want.Normalize()

	vals := []secp256k1.FieldVal{v}
	batchInvert(vals)
	require.True(t, want.Equals(&vals[0]))
}

func TestPointAddMatchesScalarArithmetic(t *testing.T) {
	// 5*G + 7*G == 12*G and 2*(5*G) == 10*G.
	p5 := pointFromInt(t, 5)
	p7 := pointFromInt(t, 7)
	p12 := pointFromInt(t, 12)
	sum := addPoints(&p5, &p7)
	require.True(t, sum.equals(&p12))

	p10 := pointFromInt(t, 10)
	dbl := doublePoint(&p5)
	require.True(t, dbl.equals(&p10))
}

func TestParsePublicKeyRoundTrip(t *testing.T) {
	p := pointFromInt(t, 987654321)
	parsed, err := ParsePublicKey(p.CompressedHex())
	require.NoError(t, err)
	require.True(t, p.equals(&parsed))

	// 0x prefix is accepted.
	parsed, err = ParsePublicKey("0x" + p.CompressedHex())
	require.NoError(t, err)
	require.True(t, p.equals(&parsed))
}

func TestParsePublicKeyRejectsGarbage(t *testing.T) {
	_, err := ParsePublicKey("zz")
	require.Error(t, err)

	_, err = ParsePublicKey("02ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")
	require.Error(t, err)
}

func TestXWordExtraction(t *testing.T) {
	p := pointFromInt(t, 1)
	xInt := new(big.Int).SetBytes(func() []byte { b := p.xBytes(); return b[:] }())

	low := new(big.Int).And(xInt, new(big.Int).SetUint64(^uint64(0)))
	require.Equal(t, low.Uint64(), p.xLow64())

	top := new(big.Int).Rsh(xInt, 192)
	require.Equal(t, top.Uint64(), p.xTop64())

	fp := fingerprintOf(&p.X)
	hi := new(big.Int).Rsh(xInt, 192)
	lo := new(big.Int).And(new(big.Int).Rsh(xInt, 128), new(big.Int).SetUint64(^uint64(0)))
	require.Equal(t, hi.Uint64(), fp.hi)
	require.Equal(t, lo.Uint64(), fp.lo)
}

func TestRandScalarStaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	bound := new(big.Int).Lsh(big.NewInt(1), 16)
	for i := 0; i < 100; i++ {
		d := randScalar(rng, 16)
		var b [32]byte
		d.PutBytes(&b)
		v := new(big.Int).SetBytes(b[:])
		require.True(t, v.Cmp(bound) < 0, "draw %s exceeds 2^16", v)
	}
}
