// Package aggstate holds mergeable aggregate sketches.
package aggstate

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"math/bits"

	"github.com/cockroachdb/errors"
)

const (
	hllP = 12
	hllM = 1 << hllP
)

// Sketch is a fixed-precision HyperLogLog sketch estimating the number of
// distinct values added to it. Its standard error is about 1.6%.
type Sketch struct {
	regs [hllM]uint8
}

// NewSketch returns an empty sketch.
func NewSketch() *Sketch {
	return &Sketch{}
}

// Add records one value.
func (s *Sketch) Add(b []byte) {
	hasher := fnv.New64a()
	_, _ = hasher.Write(b)
	s.addHash(mix64(hasher.Sum64()))
}

// AddString records one string value.
func (s *Sketch) AddString(v string) {
	hasher := fnv.New64a()
	_, _ = hasher.Write([]byte(v))
	s.addHash(mix64(hasher.Sum64()))
}

// AddUint64 records one integer value.
func (s *Sketch) AddUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	s.Add(b[:])
}

func (s *Sketch) addHash(x uint64) {
	idx := x & (hllM - 1)
	w := x >> hllP
	rho := uint8(bits.LeadingZeros64(w) - hllP + 1)
	if rho > s.regs[idx] {
		s.regs[idx] = rho
	}
}

// mix64 is the splitmix64 finalizer; FNV alone leaves the low bits of short
// inputs poorly distributed.
func mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// Merge folds other into s. The result estimates the union of both inputs.
func (s *Sketch) Merge(other *Sketch) {
	for i := range s.regs {
		if other.regs[i] > s.regs[i] {
			s.regs[i] = other.regs[i]
		}
	}
}

// Estimate returns the approximate number of distinct values.
func (s *Sketch) Estimate() uint64 {
	m := float64(hllM)
	alpha := 0.7213 / (1.0 + 1.079/m)

	sum := 0.0
	zeros := 0
	for _, r := range s.regs {
		sum += math.Ldexp(1, -int(r))
		if r == 0 {
			zeros++
		}
	}
	est := alpha * m * m / sum
	// Small-range correction.
	if est <= 2.5*m && zeros > 0 {
		est = m * math.Log(m/float64(zeros))
	}
	return uint64(est + 0.5)
}

// MarshalBinary encodes the sketch as its precision followed by the registers.
func (s *Sketch) MarshalBinary() ([]byte, error) {
	out := make([]byte, 2+hllM)
	binary.LittleEndian.PutUint16(out[:2], hllP)
	copy(out[2:], s.regs[:])
	return out, nil
}

// UnmarshalBinary decodes a sketch written by MarshalBinary.
func (s *Sketch) UnmarshalBinary(data []byte) error {
	if len(data) != 2+hllM {
		return errors.Newf("sketch: want %d bytes, got %d", 2+hllM, len(data))
	}
	if p := binary.LittleEndian.Uint16(data[:2]); p != hllP {
		return errors.Newf("sketch: unsupported precision %d", p)
	}
	copy(s.regs[:], data[2:])
	return nil
}
