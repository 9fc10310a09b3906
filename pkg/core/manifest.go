package core

// Manifest describes how to reassemble and verify a piece of content: the
// ordered chunk IDs plus the whole-content hash and total size.
type Manifest struct {
	ID        string   `json:"id"`
	ContentID string   `json:"content_id"`
	ChunkIDs  []string `json:"chunk_ids"`
	TotalSize int64    `json:"total_size"`
}

// ManifestID derives a manifest's content address from the whole-content
// hash and the ordered chunk IDs. The derivation is deterministic and
// order-sensitive, so two independent publishers of identical content
// converge on the same manifest ID.
func ManifestID(contentID string, chunkIDs []string) string {
	buf := make([]byte, 0, len(contentID)+len(chunkIDs)*64)
	buf = append(buf, contentID...)
	for _, id := range chunkIDs {
		buf = append(buf, id...)
	}
	return Hash(buf)
}
