package textsplit

import (
	"strings"

	"doc-qa-be/pkg/ragerr"
	"doc-qa-be/pkg/store"
)

// Config controls how document text is cut into chunks. Sizes are in
// characters (runes), not bytes, so multi-byte text splits cleanly.
type Config struct {
	ChunkSize    int
	ChunkOverlap int
}

// Separator preference order: paragraph break, line break, space, and
// finally a hard character cut when nothing else fits.
var separators = []string{"\n\n", "\n", " ", ""}

// ValidateConfig checks splitter invariants before any splitting occurs.
func ValidateConfig(cfg Config) error {
	if cfg.ChunkSize <= 0 {
		return ragerr.DocumentProcessing("chunk size must be positive, got %d", cfg.ChunkSize)
	}
	if cfg.ChunkOverlap < 0 {
		return ragerr.DocumentProcessing("chunk overlap must not be negative, got %d", cfg.ChunkOverlap)
	}
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		return ragerr.DocumentProcessing("chunk overlap (%d) must be smaller than chunk size (%d)", cfg.ChunkOverlap, cfg.ChunkSize)
	}
	return nil
}

// Split cuts text into ordered chunks of at most cfg.ChunkSize
// characters with cfg.ChunkOverlap characters carried over between
// consecutive chunks. The caller-supplied metadata is merged into every
// chunk; the document id is read from it when present.
//
// A document shorter than the chunk size is kept as a single chunk
// verbatim (trimmed).
func Split(text string, cfg Config, metadata map[string]interface{}) ([]store.Chunk, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ragerr.DocumentProcessing("document text is empty")
	}

	var segments []string
	if runeLen(trimmed) <= cfg.ChunkSize {
		segments = []string{trimmed}
	} else {
		parts := splitRecursive(trimmed, cfg.ChunkSize, cfg.ChunkOverlap, separators)
		segments = mergeWithOverlap(parts, cfg.ChunkSize, cfg.ChunkOverlap)
	}

	documentID := ""
	if metadata != nil {
		if v, ok := metadata[store.MetaDocumentID].(string); ok {
			documentID = v
		}
	}

	chunks := make([]store.Chunk, len(segments))
	for i, seg := range segments {
		meta := make(map[string]interface{}, len(metadata))
		for k, v := range metadata {
			meta[k] = v
		}
		chunks[i] = store.Chunk{
			Content:     seg,
			ChunkIndex:  i,
			TotalChunks: len(segments),
			DocumentID:  documentID,
			Metadata:    meta,
		}
	}
	return chunks, nil
}

// EstimateChunkCount predicts how many chunks a text of the given
// length will produce. Used for progress estimation only; the splitter
// itself is authoritative.
func EstimateChunkCount(length int, cfg Config) int {
	if length <= cfg.ChunkSize {
		return 1
	}
	step := cfg.ChunkSize - cfg.ChunkOverlap
	return (length + step - 1) / step
}

// splitRecursive breaks text into fragments no longer than size,
// preferring the earliest separator in seps that keeps natural
// boundaries intact. Separators stay attached to the preceding
// fragment so concatenation reconstructs the input.
func splitRecursive(text string, size, overlap int, seps []string) []string {
	if runeLen(text) <= size {
		return []string{text}
	}

	sep := seps[0]
	if sep == "" {
		return hardSlice(text, size, overlap)
	}

	var out []string
	for _, piece := range splitKeepSep(text, sep) {
		if runeLen(piece) <= size {
			out = append(out, piece)
		} else {
			out = append(out, splitRecursive(piece, size, overlap, seps[1:])...)
		}
	}
	return out
}

// mergeWithOverlap greedily joins fragments into segments of at most
// size characters. When a segment is emitted, fragments are dropped
// from the front of the window until the remainder fits in the overlap
// budget, so the tail of each segment reappears at the head of the next.
func mergeWithOverlap(parts []string, size, overlap int) []string {
	var out []string
	var window []string
	total := 0

	for _, p := range parts {
		plen := runeLen(p)
		if total+plen > size && len(window) > 0 {
			out = append(out, strings.Join(window, ""))
			for len(window) > 0 && (total > overlap || total+plen > size) {
				total -= runeLen(window[0])
				window = window[1:]
			}
		}
		window = append(window, p)
		total += plen
	}
	if len(window) > 0 {
		out = append(out, strings.Join(window, ""))
	}
	return out
}

func splitKeepSep(text, sep string) []string {
	raw := strings.Split(text, sep)
	parts := make([]string, 0, len(raw))
	for i, r := range raw {
		if i < len(raw)-1 {
			r += sep
		}
		if r != "" {
			parts = append(parts, r)
		}
	}
	return parts
}

// hardSlice cuts separator-less text into size-length fragments,
// stepping by size-overlap so each fragment starts with the tail of the
// previous one. The merge step then emits these as-is, which keeps the
// overlap guarantee on text no separator can break.
func hardSlice(text string, size, overlap int) []string {
	runes := []rune(text)
	step := size - overlap
	var out []string
	for i := 0; ; i += step {
		end := i + size
		if end >= len(runes) {
			out = append(out, string(runes[i:]))
			break
		}
		out = append(out, string(runes[i:end]))
	}
	return out
}

func runeLen(s string) int {
	return len([]rune(s))
}
