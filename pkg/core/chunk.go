package core

// Chunk is a fixed-size slice of original content, individually
// content-addressed. Invariants: ID == Hash(Data), Size == len(Data).
// Chunks are immutable once created.
type Chunk struct {
	ID   string `json:"id"`
	Data []byte `json:"data"`
	Size int    `json:"size"`
}

// NewChunk builds a chunk from raw bytes, computing its content address.
func NewChunk(data []byte) *Chunk {
	return &Chunk{
		ID:   Hash(data),
		Data: data,
		Size: len(data),
	}
}

// Verify recomputes the chunk's content address and reports whether it
// matches the stored ID.
func (c *Chunk) Verify() bool {
	return Hash(c.Data) == c.ID
}
