package lbpair

import "fmt"

// BinBatch is an inclusive range of bin ids fetched together.
type BinBatch struct {
	From int64
	To   int64
}

// Len returns the number of bins in the batch.
func (b BinBatch) Len() int {
	return int(b.To - b.From + 1)
}

// SplitBinRange splits [from, to] into batches of at most batchSize ids.
func SplitBinRange(from, to int64, batchSize int) ([]BinBatch, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}
	if to < from {
		return nil, fmt.Errorf("to bin must be >= from bin")
	}

	size := int64(batchSize)
	batches := make([]BinBatch, 0, (to-from)/size+1)
	for start := from; start <= to; start += size {
		end := start + size - 1
		if end > to {
			end = to
		}
		batches = append(batches, BinBatch{From: start, To: end})
	}

	return batches, nil
}
