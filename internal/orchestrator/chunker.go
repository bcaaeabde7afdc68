package orchestrator

import (
	"strings"

	"github.com/nkhandelwal/rupeewise/internal/model"
)

// ChunkText splits raw statement text into pieces of at most maxChars,
// cutting only on line boundaries so no record straddles two chunks.
// A single line longer than maxChars is hard-split as a last resort.
func ChunkText(text string, maxChars int) []string {
	if maxChars <= 0 || len(text) <= maxChars {
		return []string{text}
	}

	var (
		chunks  []string
		current strings.Builder
	)

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		if len(line) > maxChars {
			flush()
			for len(line) > maxChars {
				chunks = append(chunks, line[:maxChars])
				line = line[maxChars:]
			}
			if line != "" {
				current.WriteString(line)
			}
			continue
		}

		if current.Len()+len(line) > maxChars {
			flush()
		}
		current.WriteString(line)
	}
	flush()

	return chunks
}

// chunkTransactions groups transactions into fixed-size batches, preserving
// input order.
func chunkTransactions(txns []model.Transaction, size int) [][]model.Transaction {
	if size <= 0 {
		size = defaultChunkSizeItems
	}

	var batches [][]model.Transaction
	for start := 0; start < len(txns); start += size {
		end := start + size
		if end > len(txns) {
			end = len(txns)
		}
		batches = append(batches, txns[start:end])
	}
	return batches
}
