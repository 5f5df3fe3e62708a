package ml

import (
	"fmt"
)

const (
	TypeDecisionTree = "decision_tree"
	TypeRandomForest = "random_forest"
	TypeRemote       = "remote"
)

// LoadModel opens a model artifact. Remote models are built by the caller.
func LoadModel(modelType, path string) (Classifier, error) {
	switch modelType {
	case TypeDecisionTree:
		return LoadDecisionTree(path)
	case TypeRandomForest:
		return LoadRandomForest(path)
	default:
		return nil, fmt.Errorf("unsupported model type %q", modelType)
	}
}
