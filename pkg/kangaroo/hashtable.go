package kangaroo

import "github.com/decred/dcrd/dcrec/secp256k1/v4"

// dpFingerprint is the 128 high bits of a distinguished point's x
// coordinate. The resolver verifies every candidate key, so an alias
// between distinct points costs a respawn, never a wrong answer.
type dpFingerprint struct {
	hi, lo uint64
}

func fingerprintOf(x *secp256k1.FieldVal) dpFingerprint {
	var b [32]byte
	x.PutBytes(&b)
	return dpFingerprint{hi: beUint64(b[0:8]), lo: beUint64(b[8:16])}
}

// AddResult is the outcome of presenting a distinguished point to the table.
type AddResult int

const (
	// DPStored means no prior walk had reached this point.
	DPStored AddResult = iota
	// DPMatchSameHerd means a walk of the same type already reached this
	// point; the two walks shadow each other forever and one must restart.
	DPMatchSameHerd
	// DPMatchCrossHerd means a walk of the opposite type already reached
	// this point: the tame/wild rendezvous the search is waiting for.
	DPMatchCrossHerd
)

type dpEntry struct {
	distance secp256k1.ModNScalar
	herd     HerdType
}

// HashTable is the centralized distinguished-point table. It records at most
// one (distance, type) row per fingerprint, the first one presented, and
// reports collisions against it. It is not
// safe for concurrent use; the solver serializes every Add through a single
// mutex that also guards the end-of-search flag.
type HashTable struct {
	entries map[dpFingerprint]dpEntry
}

func NewHashTable() *HashTable {
	return &HashTable{entries: make(map[dpFingerprint]dpEntry)}
}

// Add records a distinguished point. When a row with the same fingerprint
// already exists the stored entry is kept and returned along with the kind
// of match; otherwise the new row is stored.
func (ht *HashTable) Add(x *secp256k1.FieldVal, distance *secp256k1.ModNScalar, t HerdType) (AddResult, dpEntry) {
	fp := fingerprintOf(x)
	if prev, ok := ht.entries[fp]; ok {
		if prev.herd == t {
			return DPMatchSameHerd, prev
		}
		return DPMatchCrossHerd, prev
	}
	var e dpEntry
	e.distance.Set(distance)
	e.herd = t
	ht.entries[fp] = e
	return DPStored, dpEntry{}
}

// Len returns the number of stored distinguished points.
func (ht *HashTable) Len() int {
	return len(ht.entries)
}

// Reset drops every row. Called between target keys.
func (ht *HashTable) Reset() {
	ht.entries = make(map[dpFingerprint]dpEntry)
}
