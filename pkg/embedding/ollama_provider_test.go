package embedding

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalizeVector(t *testing.T) {
	got := NormalizeVector([]float32{3, 4})
	if math.Abs(float64(got[0])-0.6) > 1e-6 || math.Abs(float64(got[1])-0.8) > 1e-6 {
		t.Errorf("NormalizeVector([3 4]) = %v", got)
	}

	var magnitude float64
	for _, v := range got {
		magnitude += float64(v) * float64(v)
	}
	if math.Abs(magnitude-1.0) > 1e-6 {
		t.Errorf("magnitude = %v, want 1.0", math.Sqrt(magnitude))
	}
}

func TestNormalizeVectorZero(t *testing.T) {
	got := NormalizeVector([]float32{0, 0, 0})
	for i, v := range got {
		if v != 0 {
			t.Errorf("component %d = %v, want 0", i, v)
		}
	}
}

func TestOllamaGenerate(t *testing.T) {
	var gotReq ollamaEmbeddingRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(ollamaEmbeddingResponse{Embedding: []float64{3, 4}})
	}))
	defer server.Close()

	provider := NewOllamaProvider(server.URL, "nomic-embed-text")
	resp, err := provider.Generate("some text", TaskRetrievalDocument)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if gotReq.Model != "nomic-embed-text" || gotReq.Prompt != "some text" {
		t.Errorf("request = %+v", gotReq)
	}

	// The returned vector is unit normalized.
	values := resp.Embedding.Values
	if len(values) != 2 {
		t.Fatalf("vector length = %d", len(values))
	}
	if math.Abs(float64(values[0])-0.6) > 1e-6 || math.Abs(float64(values[1])-0.8) > 1e-6 {
		t.Errorf("values = %v", values)
	}
}

func TestOllamaGenerateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	provider := NewOllamaProvider(server.URL, "missing-model")
	if _, err := provider.Generate("text", TaskRetrievalQuery); err == nil {
		t.Error("Generate() expected error on non-200 response")
	}
}
