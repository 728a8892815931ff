package kangaroo

import (
	"math/rand"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// HerdType tags a kangaroo as belonging to the tame or the wild herd.
type HerdType uint8

const (
	// Tame kangaroos walk from a known scalar: pos = (rangeStart + distance)*G.
	Tame HerdType = 0
	// Wild kangaroos walk from the target key: pos = Q + distance*G, with the
	// stored distance already shifted by -rangeHalfWidth mod n so both herds
	// are centred on the same midpoint.
	Wild HerdType = 1
)

func (t HerdType) String() string {
	if t == Tame {
		return "tame"
	}
	return "wild"
}

// Kangaroo is one pseudo-random walk: an affine position and the accumulated
// jump distance modulo the group order.
type Kangaroo struct {
	Pos      Point
	Distance secp256k1.ModNScalar
	Type     HerdType
}

// newKangaroo creates a kangaroo of the given type with a fresh random
// starting distance drawn uniformly from [0, 2^rangePower).
func (s *Solver) newKangaroo(rng *rand.Rand, t HerdType) *Kangaroo {
	k := &Kangaroo{Type: t}
	k.Distance = randScalar(rng, s.rangePower)

	if t == Tame {
		var pk secp256k1.ModNScalar
		pk.Set(&k.Distance).Add(&s.rangeStartScalar)
		k.Pos = scalarBasePoint(&pk)
	} else {
		// Spread wild kangaroos with a half-width translation.
		k.Distance.Add(&s.rangeHalfWidthNeg)
		o := scalarBasePoint(&k.Distance)
		k.Pos = addPoints(&s.target, &o)
	}
	return k
}

// randScalar draws a scalar uniformly from [0, 2^bits).
func randScalar(rng *rand.Rand, bits int) secp256k1.ModNScalar {
	if bits > 256 {
		bits = 256
	}
	nbytes := (bits + 7) / 8
	buf := make([]byte, nbytes)
	rng.Read(buf)
	if rem := uint(nbytes*8 - bits); rem > 0 {
		buf[0] &= 0xFF >> rem
	}
	var d secp256k1.ModNScalar
	d.SetByteSlice(buf)
	return d
}
