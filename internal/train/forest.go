package train

import (
	"math"
	"math/rand"
	"sort"
)

// Config holds the ensemble hyperparameters.
type Config struct {
	Trees           int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	Seed            int64
}

// DefaultConfig matches the shipped classifier settings: a bagged
// ensemble of 100 depth-limited trees with conservative leaf sizes.
func DefaultConfig() Config {
	return Config{
		Trees:           100,
		MaxDepth:        10,
		MinSamplesSplit: 20,
		MinSamplesLeaf:  10,
		Seed:            42,
	}
}

// TreeNode is one node of a fitted decision tree. Fields are exported
// for gob persistence.
type TreeNode struct {
	Leaf      bool
	Prob      float64 // positive-class fraction at a leaf
	Feature   int
	Threshold float64
	Left      *TreeNode
	Right     *TreeNode
}

func (n *TreeNode) predict(x []float64) float64 {
	for !n.Leaf {
		if x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Prob
}

// Forest is a bagged ensemble of binary classification trees.
type Forest struct {
	Trees       []*TreeNode
	NumFeatures int
}

// Fit trains a forest on standardized features and binary labels. Each
// tree sees a bootstrap resample and considers a random sqrt-sized
// feature subset at every split. Deterministic for a fixed seed.
func Fit(X [][]float64, y []int, cfg Config) *Forest {
	if len(X) == 0 {
		return &Forest{}
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	numFeatures := len(X[0])
	mtry := int(math.Sqrt(float64(numFeatures)))
	if mtry < 1 {
		mtry = 1
	}

	f := &Forest{
		Trees:       make([]*TreeNode, 0, cfg.Trees),
		NumFeatures: numFeatures,
	}

	for t := 0; t < cfg.Trees; t++ {
		indices := make([]int, len(X))
		for i := range indices {
			indices[i] = rng.Intn(len(X))
		}

		b := &treeBuilder{
			X:        X,
			y:        y,
			cfg:      cfg,
			mtry:     mtry,
			rng:      rand.New(rand.NewSource(rng.Int63())),
			features: make([]int, numFeatures),
		}
		for i := range b.features {
			b.features[i] = i
		}

		f.Trees = append(f.Trees, b.build(indices, 0))
	}

	return f
}

// Proba returns the ensemble's positive-class probability: the mean of
// the per-tree leaf probabilities.
func (f *Forest) Proba(x []float64) float64 {
	if len(f.Trees) == 0 {
		return 0
	}
	var sum float64
	for _, t := range f.Trees {
		sum += t.predict(x)
	}
	return sum / float64(len(f.Trees))
}

// Predict returns the class label at the 0.5 probability threshold.
func (f *Forest) Predict(x []float64) int {
	if f.Proba(x) >= 0.5 {
		return 1
	}
	return 0
}

// Accuracy is the fraction of rows predicted correctly.
func (f *Forest) Accuracy(X [][]float64, y []int) float64 {
	if len(X) == 0 {
		return 0
	}
	correct := 0
	for i := range X {
		if f.Predict(X[i]) == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(X))
}

type treeBuilder struct {
	X        [][]float64
	y        []int
	cfg      Config
	mtry     int
	rng      *rand.Rand
	features []int
}

func (b *treeBuilder) build(indices []int, depth int) *TreeNode {
	positives := 0
	for _, i := range indices {
		positives += b.y[i]
	}
	prob := float64(positives) / float64(len(indices))

	if depth >= b.cfg.MaxDepth || len(indices) < b.cfg.MinSamplesSplit || positives == 0 || positives == len(indices) {
		return &TreeNode{Leaf: true, Prob: prob}
	}

	feature, threshold, ok := b.bestSplit(indices)
	if !ok {
		return &TreeNode{Leaf: true, Prob: prob}
	}

	var left, right []int
	for _, i := range indices {
		if b.X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      b.build(left, depth+1),
		Right:     b.build(right, depth+1),
	}
}

// bestSplit scans a random feature subset for the gini-optimal binary
// split honoring the minimum leaf size.
func (b *treeBuilder) bestSplit(indices []int) (int, float64, bool) {
	b.rng.Shuffle(len(b.features), func(i, j int) {
		b.features[i], b.features[j] = b.features[j], b.features[i]
	})
	candidates := b.features[:b.mtry]

	total := len(indices)
	totalPos := 0
	for _, i := range indices {
		totalPos += b.y[i]
	}

	bestGini := math.Inf(1)
	bestFeature := -1
	bestThreshold := 0.0

	sorted := make([]int, total)
	for _, feature := range candidates {
		copy(sorted, indices)
		sort.Slice(sorted, func(a, c int) bool {
			return b.X[sorted[a]][feature] < b.X[sorted[c]][feature]
		})

		leftPos := 0
		for k := 0; k < total-1; k++ {
			leftPos += b.y[sorted[k]]
			leftN := k + 1
			rightN := total - leftN

			if leftN < b.cfg.MinSamplesLeaf || rightN < b.cfg.MinSamplesLeaf {
				continue
			}
			// No valid threshold between equal values.
			if b.X[sorted[k]][feature] == b.X[sorted[k+1]][feature] {
				continue
			}

			rightPos := totalPos - leftPos
			gini := weightedGini(leftPos, leftN, rightPos, rightN)
			if gini < bestGini {
				bestGini = gini
				bestFeature = feature
				bestThreshold = (b.X[sorted[k]][feature] + b.X[sorted[k+1]][feature]) / 2
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

func weightedGini(leftPos, leftN, rightPos, rightN int) float64 {
	return gini(leftPos, leftN)*float64(leftN)/float64(leftN+rightN) +
		gini(rightPos, rightN)*float64(rightN)/float64(leftN+rightN)
}

func gini(pos, n int) float64 {
	p := float64(pos) / float64(n)
	return 2 * p * (1 - p)
}
