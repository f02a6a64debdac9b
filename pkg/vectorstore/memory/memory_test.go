package memory

import (
	"context"
	"math"
	"testing"

	"doc-qa-be/pkg/store"
	"doc-qa-be/pkg/vectorstore"
)

func rec(docId, content string, vector []float32) vectorstore.Record {
	return vectorstore.Record{
		Chunk:  store.Chunk{Content: content, DocumentID: docId},
		Vector: vector,
	}
}

func TestSearchRanksByCosine(t *testing.T) {
	s := NewStorage()
	err := s.Add(context.Background(), []vectorstore.Record{
		rec("a", "exact match", []float32{1, 0, 0}),
		rec("b", "orthogonal", []float32{0, 1, 0}),
		rec("c", "close", []float32{0.9, 0.1, 0}),
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	scored, err := s.Search(context.Background(), []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(scored) != 2 {
		t.Fatalf("result count = %d, want 2", len(scored))
	}
	if scored[0].Chunk.Content != "exact match" {
		t.Errorf("top result = %q", scored[0].Chunk.Content)
	}
	if math.Abs(scored[0].Score-1.0) > 1e-6 {
		t.Errorf("top score = %v, want 1.0", scored[0].Score)
	}
	if scored[1].Chunk.Content != "close" {
		t.Errorf("second result = %q", scored[1].Chunk.Content)
	}
	if scored[0].Score <= scored[1].Score {
		t.Errorf("scores not descending: %v, %v", scored[0].Score, scored[1].Score)
	}
}

func TestSearchEmptyStore(t *testing.T) {
	s := NewStorage()

	scored, err := s.Search(context.Background(), []float32{1, 0, 0}, 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(scored) != 0 {
		t.Errorf("result count = %d, want 0", len(scored))
	}
}

func TestAllReturnsCopy(t *testing.T) {
	s := NewStorage()
	err := s.Add(context.Background(), []vectorstore.Record{rec("a", "one", []float32{1})})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	all, err := s.All(context.Background())
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	all[0].Chunk.Content = "mutated"

	again, _ := s.All(context.Background())
	if again[0].Chunk.Content != "one" {
		t.Error("All() exposes internal storage")
	}
}

func TestReset(t *testing.T) {
	s := NewStorage()
	err := s.Add(context.Background(), []vectorstore.Record{rec("a", "one", []float32{1})})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if err := s.Reset(context.Background()); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	all, _ := s.All(context.Background())
	if len(all) != 0 {
		t.Errorf("records after reset = %d", len(all))
	}
}

func TestCosineSimilarityZeroVector(t *testing.T) {
	if got := cosineSimilarity([]float32{0, 0}, []float32{1, 0}); got != 0 {
		t.Errorf("cosineSimilarity(zero, x) = %v, want 0", got)
	}
}
