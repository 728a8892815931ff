package kangaroo

import "github.com/decred/dcrd/dcrec/secp256k1/v4"

// resolveCollision derives the private key from a tame/wild rendezvous.
// d is the distance of the reporting kangaroo of type t; prev is the stored
// row of the opposite type for the same fingerprint.
//
// The candidate is k = rangeStart + dTame - dWild mod n. Because the table
// fingerprints only the x coordinate, the stored walk may actually have met
// -k*G, so the negated candidate n-k is checked as well. The returned scalar
// is the one that verified against the target; ok is false when neither
// candidate matches, which only happens on fingerprint aliasing.
func (s *Solver) resolveCollision(d *secp256k1.ModNScalar, t HerdType, prev dpEntry) (secp256k1.ModNScalar, bool) {
	var dTame, dWild secp256k1.ModNScalar
	if t == Tame {
		dTame.Set(d)
		dWild.Set(&prev.distance)
	} else {
		dTame.Set(&prev.distance)
		dWild.Set(d)
	}

	var pk secp256k1.ModNScalar
	pk.Set(&s.rangeStartScalar)
	pk.Add(&dTame)
	dWild.Negate()
	pk.Add(&dWild)

	p := scalarBasePoint(&pk)
	if p.equals(&s.target) {
		return pk, true
	}

	// Symmetric key: k*G and (n-k)*G share an x coordinate.
	pk.Negate()
	p = scalarBasePoint(&pk)
	if p.equals(&s.target) {
		return pk, true
	}

	return secp256k1.ModNScalar{}, false
}
