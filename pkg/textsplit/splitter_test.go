package textsplit

import (
	"strings"
	"testing"

	"doc-qa-be/pkg/ragerr"
	"doc-qa-be/pkg/store"
)

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "valid config",
			cfg:     Config{ChunkSize: 1000, ChunkOverlap: 200},
			wantErr: false,
		},
		{
			name:    "zero overlap is allowed",
			cfg:     Config{ChunkSize: 100, ChunkOverlap: 0},
			wantErr: false,
		},
		{
			name:    "zero chunk size",
			cfg:     Config{ChunkSize: 0, ChunkOverlap: 0},
			wantErr: true,
		},
		{
			name:    "negative overlap",
			cfg:     Config{ChunkSize: 100, ChunkOverlap: -1},
			wantErr: true,
		},
		{
			name:    "overlap equal to size",
			cfg:     Config{ChunkSize: 100, ChunkOverlap: 100},
			wantErr: true,
		},
		{
			name:    "overlap larger than size",
			cfg:     Config{ChunkSize: 100, ChunkOverlap: 150},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !ragerr.IsKind(err, ragerr.KindDocumentProcessing) {
				t.Errorf("ValidateConfig() error kind = %v, want document processing", err)
			}
		})
	}
}

func TestSplitEmptyText(t *testing.T) {
	cfg := Config{ChunkSize: 100, ChunkOverlap: 10}

	for _, text := range []string{"", "   ", "\n\n\t"} {
		if _, err := Split(text, cfg, nil); err == nil {
			t.Errorf("Split(%q) expected error, got nil", text)
		}
	}
}

func TestSplitShortTextSingleChunk(t *testing.T) {
	cfg := Config{ChunkSize: 100, ChunkOverlap: 10}
	meta := map[string]interface{}{
		store.MetaDocumentID: "doc-1",
		store.MetaFilename:   "notes.txt",
	}

	chunks, err := Split("  hello world  ", cfg, meta)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}

	if len(chunks) != 1 {
		t.Fatalf("chunk count = %d, want 1", len(chunks))
	}
	c := chunks[0]
	if c.Content != "hello world" {
		t.Errorf("Content = %q, want %q", c.Content, "hello world")
	}
	if c.ChunkIndex != 0 || c.TotalChunks != 1 {
		t.Errorf("ChunkIndex/TotalChunks = %d/%d, want 0/1", c.ChunkIndex, c.TotalChunks)
	}
	if c.DocumentID != "doc-1" {
		t.Errorf("DocumentID = %q, want doc-1", c.DocumentID)
	}
	if c.MetaString(store.MetaFilename) != "notes.txt" {
		t.Errorf("metadata filename = %q, want notes.txt", c.MetaString(store.MetaFilename))
	}
}

func TestSplitLongText(t *testing.T) {
	cfg := Config{ChunkSize: 50, ChunkOverlap: 10}
	paragraphs := []string{
		"The quick brown fox jumps over the lazy dog.",
		"Pack my box with five dozen liquor jugs.",
		"How vexingly quick daft zebras jump.",
		"Sphinx of black quartz, judge my vow.",
	}
	text := strings.Join(paragraphs, "\n\n")

	chunks, err := Split(text, cfg, map[string]interface{}{store.MetaDocumentID: "doc-2"})
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("chunk count = %d, want at least 2", len(chunks))
	}

	for i, c := range chunks {
		if got := len([]rune(c.Content)); got > cfg.ChunkSize {
			t.Errorf("chunk %d length = %d, exceeds chunk size %d", i, got, cfg.ChunkSize)
		}
		if !strings.Contains(text, c.Content) {
			t.Errorf("chunk %d content is not a substring of the input: %q", i, c.Content)
		}
		if c.ChunkIndex != i {
			t.Errorf("chunk %d ChunkIndex = %d", i, c.ChunkIndex)
		}
		if c.TotalChunks != len(chunks) {
			t.Errorf("chunk %d TotalChunks = %d, want %d", i, c.TotalChunks, len(chunks))
		}
		if c.DocumentID != "doc-2" {
			t.Errorf("chunk %d DocumentID = %q", i, c.DocumentID)
		}
	}

	// Every word of the input must land in at least one chunk.
	joined := strings.Join(chunkContents(chunks), " ")
	for _, p := range paragraphs {
		for _, word := range strings.Fields(p) {
			if !strings.Contains(joined, word) {
				t.Errorf("word %q lost during splitting", word)
			}
		}
	}
}

func TestSplitMetadataIsCopied(t *testing.T) {
	cfg := Config{ChunkSize: 100, ChunkOverlap: 10}
	meta := map[string]interface{}{store.MetaDocumentID: "doc-3"}

	chunks, err := Split("some content", cfg, meta)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}

	chunks[0].Metadata["extra"] = "mutated"
	if _, ok := meta["extra"]; ok {
		t.Error("chunk metadata shares storage with caller map")
	}
}

func TestMergeWithOverlap(t *testing.T) {
	got := mergeWithOverlap([]string{"aa", "bb", "cc", "dd"}, 4, 2)
	want := []string{"aabb", "bbcc", "ccdd"}

	if len(got) != len(want) {
		t.Fatalf("segments = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("segment %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitKeepSep(t *testing.T) {
	got := splitKeepSep("a b c", " ")
	want := []string{"a ", "b ", "c"}

	if len(got) != len(want) {
		t.Fatalf("parts = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("part %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestHardSlice(t *testing.T) {
	tests := []struct {
		text    string
		size    int
		overlap int
		want    []string
	}{
		{"abcdefg", 3, 0, []string{"abc", "def", "g"}},
		{"abcdefgh", 4, 2, []string{"abcd", "cdef", "efgh"}},
		{"ab", 3, 1, []string{"ab"}},
	}
	for _, tt := range tests {
		got := hardSlice(tt.text, tt.size, tt.overlap)
		if len(got) != len(tt.want) {
			t.Fatalf("hardSlice(%q, %d, %d) = %v, want %v", tt.text, tt.size, tt.overlap, got, tt.want)
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("hardSlice(%q, %d, %d) slice %d = %q, want %q", tt.text, tt.size, tt.overlap, i, got[i], tt.want[i])
			}
		}
	}
}

func TestSplitSeparatorlessTextKeepsOverlap(t *testing.T) {
	text := strings.Repeat("a", 9) + strings.Repeat("b", 21)
	cfg := Config{ChunkSize: 10, ChunkOverlap: 4}

	chunks, err := Split(text, cfg, nil)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want at least 2", len(chunks))
	}

	for i, c := range chunks {
		if runeLen(c.Content) > cfg.ChunkSize {
			t.Errorf("chunk %d length = %d, exceeds chunk size %d", i, runeLen(c.Content), cfg.ChunkSize)
		}
		if i == 0 {
			continue
		}
		prev := []rune(chunks[i-1].Content)
		tail := string(prev[len(prev)-cfg.ChunkOverlap:])
		if !strings.HasPrefix(c.Content, tail) {
			t.Errorf("chunk %d = %q does not start with tail %q of chunk %d", i, c.Content, tail, i-1)
		}
	}
}

func TestEstimateChunkCount(t *testing.T) {
	cfg := Config{ChunkSize: 1000, ChunkOverlap: 200}

	tests := []struct {
		length int
		want   int
	}{
		{50, 1},
		{1000, 1},
		{1001, 2},
		{2500, 4},
	}
	for _, tt := range tests {
		if got := EstimateChunkCount(tt.length, cfg); got != tt.want {
			t.Errorf("EstimateChunkCount(%d) = %d, want %d", tt.length, got, tt.want)
		}
	}
}

func chunkContents(chunks []store.Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Content
	}
	return out
}
