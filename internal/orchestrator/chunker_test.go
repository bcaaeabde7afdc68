package orchestrator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nkhandelwal/rupeewise/internal/model"
)

func TestChunkTextShortinput(t *testing.T) {
	chunks := ChunkText("one line", 100)
	assert.Equal(t, []string{"one line"}, chunks)
}

func TestChunkTextSplitsOnLineBoundaries(t *testing.T) {
	var lines []string
	for i := 0; i < 100; i++ {
		lines = append(lines, strings.Repeat("x", 90))
	}
	text := strings.Join(lines, "\n")

	chunks := ChunkText(text, 1000)

	assert.Greater(t, len(chunks), 1)
	for i, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 1000)
		if i < len(chunks)-1 {
			assert.True(t, strings.HasSuffix(chunk, "\n"), "chunk %d should end on a line boundary", i)
		}
	}
	assert.Equal(t, text, strings.Join(chunks, ""), "chunking must be lossless")
}

func TestChunkTextOversizedLine(t *testing.T) {
	text := strings.Repeat("y", 2500)

	chunks := ChunkText(text, 1000)

	assert.Len(t, chunks, 3)
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestChunkTransactions(t *testing.T) {
	txns := make([]model.Transaction, 37)
	batches := chunkTransactions(txns, 15)

	assert.Len(t, batches, 3)
	assert.Len(t, batches[0], 15)
	assert.Len(t, batches[1], 15)
	assert.Len(t, batches[2], 7)
}

func TestChunkTransactionsEmpty(t *testing.T) {
	assert.Nil(t, chunkTransactions(nil, 15))
}
