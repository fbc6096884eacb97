package spool

import (
	"github.com/cloudraidfs/cloudraidfs/pkg/erasure"
)

// ReadPending reconstructs a stripe's plaintext from whatever shard
// files are still sitting in the spool directory, for a reader that
// asks for a stripe the file layer knows is still pending upload.
// Absent files (already uploaded and removed, or never spooled) count
// as missing shards; decoding still succeeds as long as at least k
// are present.
func (s *Spool) ReadPending(stripeID uint64) ([]byte, error) {
	total := s.k + s.m
	shards := make([][]byte, total)
	present := 0
	for i := 0; i < total; i++ {
		data, err := s.readSpoolFile(stripeID, uint32(i))
		if err != nil {
			continue
		}
		shards[i] = data
		present++
	}
	if present < s.k {
		return nil, ErrInsufficientShards
	}
	return erasure.Decode(s.k, s.m, shards)
}
