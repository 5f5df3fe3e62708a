package ml

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"loan-predictor/domain"
)

func mustTree(t *testing.T, nodes []TreeNode) *DecisionTree {
	t.Helper()
	tree, err := NewDecisionTree(nodes)
	if err != nil {
		t.Fatalf("NewDecisionTree: %v", err)
	}
	return tree
}

func TestRandomForestMajority(t *testing.T) {
	forest, err := NewRandomForest([]*DecisionTree{
		mustTree(t, incomeTree(1000)),
		mustTree(t, incomeTree(2000)),
		mustTree(t, incomeTree(3000)),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		income float64
		want   int
	}{
		{500, LabelDenied},
		{1500, LabelDenied},
		{2500, LabelApproved},
		{5000, LabelApproved},
	}
	for _, tt := range tests {
		var v domain.FeatureVector
		v[0] = tt.income
		got, err := forest.Predict(context.Background(), v)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tt.want {
			t.Errorf("income %.0f: got %d, want %d", tt.income, got, tt.want)
		}
	}
}

func TestRandomForestTieDenies(t *testing.T) {
	forest, err := NewRandomForest([]*DecisionTree{
		mustTree(t, incomeTree(1000)),
		mustTree(t, incomeTree(3000)),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var v domain.FeatureVector
	v[0] = 2000
	if got, _ := forest.Predict(context.Background(), v); got != LabelDenied {
		t.Fatalf("expected tie to deny, got %d", got)
	}
}

func TestLoadRandomForest(t *testing.T) {
	payload, err := json.Marshal(forestFile{Trees: [][]TreeNode{creditTree(), incomeTree(100), creditTree()}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "forest.json")
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	model, err := LoadModel(TypeRandomForest, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	forest := model.(*RandomForest)
	if forest.Size() != 3 {
		t.Fatalf("expected 3 trees, got %d", forest.Size())
	}
}

func TestNewRandomForest_Empty(t *testing.T) {
	if _, err := NewRandomForest(nil); err == nil {
		t.Fatalf("expected error for empty forest")
	}
}
