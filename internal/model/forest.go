package model

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// ForestModel is an ensemble of bagged regression trees. Predictions average
// the per-tree responses.
type ForestModel struct {
	trees  []*treeNode
	nFeat  int
	fitted bool
}

func (m *ForestModel) Kind() Type   { return RandomForest }
func (m *ForestModel) Fitted() bool { return m.fitted }
func (m *ForestModel) Trees() int   { return len(m.trees) }

type treeNode struct {
	feature     int
	threshold   float64
	value       float64
	left, right *treeNode
}

func (n *treeNode) leaf() bool { return n.left == nil }

func trainForest(spec Spec, X *mat.Dense, y []float64) (*ForestModel, error) {
	if X == nil {
		return nil, fmt.Errorf("random forest: nil feature matrix")
	}
	r, c := X.Dims()
	if r != len(y) {
		return nil, fmt.Errorf("random forest: X has %d rows, y has %d", r, len(y))
	}
	if r == 0 {
		return nil, fmt.Errorf("random forest: no training rows")
	}

	trees := spec.Trees
	if trees <= 0 {
		trees = 100
	}
	minLeaf := spec.MinLeaf
	if minLeaf <= 0 {
		minLeaf = 1
	}
	// Feature subsampling per split, p/3 rounded up, the usual regression
	// forest heuristic.
	mtry := (c + 2) / 3
	if mtry < 1 {
		mtry = 1
	}

	rnd := rand.New(rand.NewSource(spec.Seed))
	b := &treeBuilder{
		X: X, y: y,
		maxDepth: spec.MaxDepth,
		minLeaf:  minLeaf,
		mtry:     mtry,
		rnd:      rnd,
	}

	grown := make([]*treeNode, trees)
	idx := make([]int, r)
	for t := 0; t < trees; t++ {
		for i := range idx {
			idx[i] = rnd.Intn(r)
		}
		grown[t] = b.grow(idx, 0)
	}

	return &ForestModel{trees: grown, nFeat: c, fitted: true}, nil
}

type treeBuilder struct {
	X        *mat.Dense
	y        []float64
	maxDepth int
	minLeaf  int
	mtry     int
	rnd      *rand.Rand
}

func (b *treeBuilder) grow(idx []int, depth int) *treeNode {
	if len(idx) <= b.minLeaf || (b.maxDepth > 0 && depth >= b.maxDepth) || pure(b.y, idx) {
		return &treeNode{value: meanAt(b.y, idx)}
	}

	feature, threshold, ok := b.bestSplit(idx)
	if !ok {
		return &treeNode{value: meanAt(b.y, idx)}
	}

	var left, right []int
	for _, i := range idx {
		if b.X.At(i, feature) <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &treeNode{value: meanAt(b.y, idx)}
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      b.grow(left, depth+1),
		right:     b.grow(right, depth+1),
	}
}

// bestSplit scans a random feature subset for the split minimizing the
// weighted child variance.
func (b *treeBuilder) bestSplit(idx []int) (feature int, threshold float64, ok bool) {
	_, c := b.X.Dims()
	features := b.rnd.Perm(c)[:b.mtry]

	bestScore := math.Inf(1)
	vals := make([]float64, 0, len(idx))
	for _, f := range features {
		vals = vals[:0]
		for _, i := range idx {
			vals = append(vals, b.X.At(i, f))
		}
		sorted := append([]float64(nil), vals...)
		sort.Float64s(sorted)

		for k := 0; k+1 < len(sorted); k++ {
			if sorted[k] == sorted[k+1] {
				continue
			}
			thr := (sorted[k] + sorted[k+1]) / 2
			score := b.splitScore(idx, f, thr)
			if score < bestScore {
				bestScore = score
				feature = f
				threshold = thr
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

func (b *treeBuilder) splitScore(idx []int, feature int, threshold float64) float64 {
	var ln, rn float64
	var lSum, rSum, lSq, rSq float64
	for _, i := range idx {
		v := b.y[i]
		if b.X.At(i, feature) <= threshold {
			ln++
			lSum += v
			lSq += v * v
		} else {
			rn++
			rSum += v
			rSq += v * v
		}
	}
	if ln == 0 || rn == 0 {
		return math.Inf(1)
	}
	lVar := lSq/ln - (lSum/ln)*(lSum/ln)
	rVar := rSq/rn - (rSum/rn)*(rSum/rn)
	return (ln*lVar + rn*rVar) / (ln + rn)
}

func pure(y []float64, idx []int) bool {
	for _, i := range idx[1:] {
		if y[i] != y[idx[0]] {
			return false
		}
	}
	return true
}

func meanAt(y []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	var sum float64
	for _, i := range idx {
		sum += y[i]
	}
	return sum / float64(len(idx))
}

// Predict returns the forest average for each row of X.
func (m *ForestModel) Predict(X *mat.Dense) ([]float64, error) {
	if !m.fitted {
		return nil, fmt.Errorf("random forest: model is not fitted")
	}
	r, c := X.Dims()
	if c != m.nFeat {
		return nil, fmt.Errorf("random forest: fitted on %d features, got %d", m.nFeat, c)
	}
	out := make([]float64, r)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, X)
		var sum float64
		for _, tree := range m.trees {
			sum += predictTree(tree, row)
		}
		out[i] = sum / float64(len(m.trees))
	}
	return out, nil
}

func predictTree(n *treeNode, row []float64) float64 {
	for !n.leaf() {
		if row[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}
