package spectrum

import (
	"encoding/binary"

	"github.com/spaolacci/murmur3"
)

// binIndex is a fixed-bucket-count hash index over peaks' m/z bin numbers,
// used to accelerate Sp's nearest-peak queries (spec.md §3's "lazily
// populated m/z-binned index"). Buckets are addressed by a murmur3 hash of
// the bin number rather than Go's native map, the way a hot-path
// systems-language index would use an open addressing scheme rather than a
// general-purpose hash map.
type binIndex struct {
	binWidth, binOffset float64
	buckets             [][]int // bucket -> peak indices, in original Peaks order
	numBuckets          uint32
}

// bucketCountFor picks a power-of-two bucket count a few times the peak
// count, keeping average bucket occupancy low.
func bucketCountFor(n int) uint32 {
	count := uint32(16)
	for int(count) < n*2 {
		count <<= 1
	}
	return count
}

func (s *Spectrum) bin(mz float64) int32 {
	return int32((mz + s.index.binOffset) / s.index.binWidth)
}

func bucketFor(bin int32, numBuckets uint32) uint32 {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(bin))
	return murmur3.Sum32(buf[:]) % numBuckets
}

// buildIndex constructs the bin index over s.Peaks at the given bin
// width/offset (spec.md §4.5 step 2's binning rule, reused here for
// nearest-peak lookup rather than XCorr vector construction).
func (s *Spectrum) buildIndex(binWidth, binOffset float64) {
	idx := &binIndex{binWidth: binWidth, binOffset: binOffset, numBuckets: bucketCountFor(len(s.Peaks))}
	idx.buckets = make([][]int, idx.numBuckets)
	s.index = idx
	for i, p := range s.Peaks {
		b := s.bin(p.MZ)
		bucket := bucketFor(b, idx.numBuckets)
		idx.buckets[bucket] = append(idx.buckets[bucket], i)
	}
}

// NearestPeak returns the observed peak closest to mz within tolerance,
// building the lazy bin index on first use. ok is false if no peak falls
// within tolerance.
func (s *Spectrum) NearestPeak(mz, binWidth, binOffset, tolerance float64) (Peak, bool) {
	if s.index == nil || s.index.binWidth != binWidth || s.index.binOffset != binOffset {
		s.buildIndex(binWidth, binOffset)
	}
	target := s.bin(mz)
	var best Peak
	bestDist := tolerance
	found := false
	// A peak within tolerance of mz can only land in the target bin or an
	// adjacent one, since bins are binWidth wide.
	for db := int32(-1); db <= 1; db++ {
		bucket := bucketFor(target+db, s.index.numBuckets)
		for _, pi := range s.index.buckets[bucket] {
			p := s.Peaks[pi]
			if s.bin(p.MZ) != target+db {
				continue // hash collision from a different bin sharing this bucket
			}
			dist := p.MZ - mz
			if dist < 0 {
				dist = -dist
			}
			if dist <= tolerance && (!found || dist < bestDist) {
				best, bestDist, found = p, dist, true
			}
		}
	}
	return best, found
}
