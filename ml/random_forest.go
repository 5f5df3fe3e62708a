package ml

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"loan-predictor/domain"
)

// RandomForest approves when a strict majority of its trees approve.
type RandomForest struct {
	trees []*DecisionTree
}

type forestFile struct {
	Trees [][]TreeNode `json:"trees"`
}

func NewRandomForest(trees []*DecisionTree) (*RandomForest, error) {
	if len(trees) == 0 {
		return nil, errors.New("forest has no trees")
	}
	return &RandomForest{trees: trees}, nil
}

func (rf *RandomForest) Predict(ctx context.Context, features domain.FeatureVector) (int, error) {
	approvals := 0
	for i, tree := range rf.trees {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		label, err := tree.classify(features)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", i, err)
		}
		if label == LabelApproved {
			approvals++
		}
	}
	if approvals*2 > len(rf.trees) {
		return LabelApproved, nil
	}
	return LabelDenied, nil
}

func (rf *RandomForest) Size() int {
	return len(rf.trees)
}

// LoadRandomForest reads {"trees": [[node, ...], ...]} from path.
func LoadRandomForest(path string) (*RandomForest, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file forestFile
	if err := json.Unmarshal(payload, &file); err != nil {
		return nil, fmt.Errorf("decode random forest: %w", err)
	}
	trees := make([]*DecisionTree, 0, len(file.Trees))
	for i, nodes := range file.Trees {
		tree, err := NewDecisionTree(nodes)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		trees = append(trees, tree)
	}
	return NewRandomForest(trees)
}
