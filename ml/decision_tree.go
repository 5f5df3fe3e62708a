package ml

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"loan-predictor/domain"
)

// DecisionTree is a binary tree exported as a flat node array. Node 0 is the root.
type DecisionTree struct {
	nodes []TreeNode
}

type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	ClassLabel int     `json:"class_label"`
	IsLeaf     bool    `json:"is_leaf"`
}

func NewDecisionTree(nodes []TreeNode) (*DecisionTree, error) {
	dt := &DecisionTree{nodes: nodes}
	if err := dt.check(); err != nil {
		return nil, err
	}
	return dt, nil
}

func (dt *DecisionTree) Predict(_ context.Context, features domain.FeatureVector) (int, error) {
	return dt.classify(features)
}

func (dt *DecisionTree) classify(features domain.FeatureVector) (int, error) {
	if len(dt.nodes) == 0 {
		return 0, ErrModelNotLoaded
	}
	idx := 0
	// a well-formed tree reaches a leaf in at most len(nodes) steps
	for steps := 0; steps <= len(dt.nodes); steps++ {
		node := dt.nodes[idx]
		if node.IsLeaf {
			return node.ClassLabel, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return 0, fmt.Errorf("%w: %d", ErrFeatureShape, node.FeatureIdx)
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(dt.nodes) {
			return 0, errors.New("invalid tree state")
		}
	}
	return 0, errors.New("tree contains a cycle")
}

func (dt *DecisionTree) check() error {
	if len(dt.nodes) == 0 {
		return errors.New("tree has no nodes")
	}
	for i, node := range dt.nodes {
		if node.IsLeaf {
			if node.ClassLabel != LabelDenied && node.ClassLabel != LabelApproved {
				return fmt.Errorf("node %d: class label %d is not binary", i, node.ClassLabel)
			}
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= domain.FeatureVectorLen {
			return fmt.Errorf("node %d: %w: %d", i, ErrFeatureShape, node.FeatureIdx)
		}
		if node.LeftChild <= i || node.LeftChild >= len(dt.nodes) ||
			node.RightChild <= i || node.RightChild >= len(dt.nodes) {
			return fmt.Errorf("node %d: child index out of range", i)
		}
	}
	return nil
}

// LoadDecisionTree reads a JSON node array from path.
func LoadDecisionTree(path string) (*DecisionTree, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var nodes []TreeNode
	if err := json.Unmarshal(payload, &nodes); err != nil {
		return nil, fmt.Errorf("decode decision tree: %w", err)
	}
	return NewDecisionTree(nodes)
}
