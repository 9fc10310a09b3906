package chunker

import (
	"github.com/dds-io/dds/pkg/core"
)

const DefaultChunkSize = 1024 // 1KiB

// Chunker splits content into content-addressed chunks and builds the
// manifest needed to reassemble and verify it.
type Chunker interface {
	ChunkContent(content []byte) ([]*core.Chunk, error)
	GenerateManifest(chunks []*core.Chunk, content []byte) (*core.Manifest, error)
}

// FixedSizeChunker splits content into fixed-size pieces; the final piece
// may be shorter. Fixed-size chunking keeps memory bounded during transfer
// and makes chunking deterministic for identical content.
type FixedSizeChunker struct {
	chunkSize int
}

// NewFixedSizeChunker creates a chunker with the given chunk size. A size
// of zero or less falls back to DefaultChunkSize.
func NewFixedSizeChunker(chunkSize int) *FixedSizeChunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &FixedSizeChunker{chunkSize: chunkSize}
}

// ChunkContent splits content into ordered chunks, each addressed by the
// hash of its data.
func (c *FixedSizeChunker) ChunkContent(content []byte) ([]*core.Chunk, error) {
	if len(content) == 0 {
		return nil, core.ErrEmptyContent
	}

	chunks := make([]*core.Chunk, 0, (len(content)+c.chunkSize-1)/c.chunkSize)
	for offset := 0; offset < len(content); offset += c.chunkSize {
		end := offset + c.chunkSize
		if end > len(content) {
			end = len(content)
		}

		data := make([]byte, end-offset)
		copy(data, content[offset:end])
		chunks = append(chunks, core.NewChunk(data))
	}

	return chunks, nil
}

// GenerateManifest builds the manifest for content and its chunks. The
// manifest ID is derived deterministically from the content hash and the
// ordered chunk IDs.
func (c *FixedSizeChunker) GenerateManifest(chunks []*core.Chunk, content []byte) (*core.Manifest, error) {
	if len(chunks) == 0 {
		return nil, core.ErrNoChunks
	}

	chunkIDs := make([]string, 0, len(chunks))
	var totalSize int64
	for _, chunk := range chunks {
		chunkIDs = append(chunkIDs, chunk.ID)
		totalSize += int64(chunk.Size)
	}

	contentID := core.Hash(content)

	return &core.Manifest{
		ID:        core.ManifestID(contentID, chunkIDs),
		ContentID: contentID,
		ChunkIDs:  chunkIDs,
		TotalSize: totalSize,
	}, nil
}
