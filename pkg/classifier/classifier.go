package classifier

import (
	"encoding/json"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"sort"
	"strings"

	"mercator-hq/ceres/pkg/claims"
	"mercator-hq/ceres/pkg/policy"
)

// Config contains the training contract. The seed is part of the contract:
// training the same policy and seed set with the same Config must produce
// the same model.
type Config struct {
	// Seed initializes the weight vector deterministically.
	// Default: 42
	Seed int64 `yaml:"seed"`

	// Epochs is the number of gradient descent passes. Default: 200
	Epochs int `yaml:"epochs"`

	// LearningRate is the gradient descent step size. Default: 0.5
	LearningRate float64 `yaml:"learning_rate"`

	// AbstainBelow forces directive REVIEW when confidence is lower.
	// Default: 0.6
	AbstainBelow float64 `yaml:"abstain_below"`

	// PassAbove and FailBelow map the model score to a directive.
	// Defaults: 0.7 and 0.3
	PassAbove float64 `yaml:"pass_above"`
	FailBelow float64 `yaml:"fail_below"`
}

// DefaultConfig returns the default training configuration.
func DefaultConfig() *Config {
	return &Config{
		Seed:         42,
		Epochs:       200,
		LearningRate: 0.5,
		AbstainBelow: 0.6,
		PassAbove:    0.7,
		FailBelow:    0.3,
	}
}

// Result is one classification outcome.
type Result struct {
	// Directive is PASS, FAIL, or REVIEW. Never WARNING: the classifier
	// abstains to REVIEW rather than warn.
	Directive claims.Directive

	// Confidence is the model's calibrated confidence in [0,1].
	Confidence float64

	// Available is false when no trained model was loaded; the result is
	// then the degraded-mode constant {REVIEW, 0.5}.
	Available bool
}

// model is the serializable trained state.
type model struct {
	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
	Weights    []float64      `json:"weights"`
	Bias       float64        `json:"bias"`
}

// Classifier is the fallback claim classifier consulted when no policy rule
// matches. The trained model is read-only after Train/LoadFile and may be
// shared across concurrent workers.
type Classifier struct {
	config *Config
	model  *model
	logger *slog.Logger
}

// New creates an untrained classifier. Until Train or LoadFile succeeds,
// Classify returns the degraded-mode result.
func New(config *Config) *Classifier {
	if config == nil {
		config = DefaultConfig()
	}
	return &Classifier{
		config: config,
		logger: slog.Default().With("component", "classifier"),
	}
}

// Available reports whether a trained model is loaded.
func (c *Classifier) Available() bool {
	return c.model != nil
}

// Train builds the model from scratch from the policy's claim/directive
// pairs plus the fixed seed set. Training is deterministic for a given
// policy, seed set, and Config.
func (c *Classifier) Train(p *policy.Policy) {
	samples := trainingSet(p)
	if len(samples) == 0 {
		c.logger.Warn("no training samples, classifier stays unavailable")
		return
	}

	vocab, idf := buildVocabulary(samples)
	vectors := make([][]float64, len(samples))
	for i, s := range samples {
		vectors[i] = vectorize(s.Text, vocab, idf)
	}

	rng := rand.New(rand.NewSource(c.config.Seed))
	weights := make([]float64, len(vocab))
	for i := range weights {
		weights[i] = (rng.Float64() - 0.5) * 0.01
	}
	bias := 0.0

	// Logistic regression with graded targets: REVIEW-ish samples sit at
	// 0.5 rather than forcing a hard class.
	lr := c.config.LearningRate
	for epoch := 0; epoch < c.config.Epochs; epoch++ {
		for i, x := range vectors {
			pred := sigmoid(dot(weights, x) + bias)
			grad := pred - samples[i].Label
			for j, xj := range x {
				if xj != 0 {
					weights[j] -= lr * grad * xj
				}
			}
			bias -= lr * grad
		}
	}

	c.model = &model{Vocabulary: vocab, IDF: idf, Weights: weights, Bias: bias}
	c.logger.Info("classifier trained",
		"samples", len(samples),
		"features", len(vocab),
		"seed", c.config.Seed,
	)
}

// trainingSet converts the policy into labeled samples and appends the seed
// set. PASS-like directives are positive, FAIL negative, everything else a
// graded middle label.
func trainingSet(p *policy.Policy) []Sample {
	var samples []Sample
	if p != nil {
		for _, rule := range p.Rules {
			label := 0.5
			switch rule.Directive {
			case policy.RulePass, policy.RulePassIfCert:
				label = 1.0
			case policy.RuleFail:
				label = 0.0
			}
			samples = append(samples, Sample{Text: rule.Claim, Label: label})
		}
	}
	return append(samples, SeedSamples()...)
}

// Classify scores a claim text. If the model is unavailable the degraded
// result {REVIEW, 0.5, unavailable} is returned; this is never an error.
func (c *Classifier) Classify(claimText string) Result {
	if c.model == nil {
		return Result{Directive: claims.DirectiveReview, Confidence: 0.5, Available: false}
	}

	x := vectorize(claimText, c.model.Vocabulary, c.model.IDF)
	score := sigmoid(dot(c.model.Weights, x) + c.model.Bias)

	var directive claims.Directive
	switch {
	case score > c.config.PassAbove:
		directive = claims.DirectivePass
	case score < c.config.FailBelow:
		directive = claims.DirectiveFail
	default:
		directive = claims.DirectiveReview
	}

	confidence := math.Max(score, 1-score)
	if confidence < c.config.AbstainBelow {
		directive = claims.DirectiveReview
	}

	return Result{Directive: directive, Confidence: confidence, Available: true}
}

// SaveFile persists the trained model as JSON.
func (c *Classifier) SaveFile(path string) error {
	if c.model == nil {
		return claims.NewInvalidInputError("no trained model to save")
	}
	data, err := json.Marshal(c.model)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadFile loads a previously saved model. On failure the classifier stays
// in degraded mode and the error is returned for audit logging.
func (c *Classifier) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var m model
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	c.model = &m
	return nil
}

// tokenize lower-cases and splits on non-letter/digit runs.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}

// buildVocabulary assigns indexes in sorted token order so the feature
// space is independent of map iteration order.
func buildVocabulary(samples []Sample) (map[string]int, []float64) {
	docFreq := make(map[string]int)
	for _, s := range samples {
		seen := make(map[string]bool)
		for _, tok := range tokenize(s.Text) {
			if !seen[tok] {
				docFreq[tok]++
				seen[tok] = true
			}
		}
	}

	tokens := make([]string, 0, len(docFreq))
	for tok := range docFreq {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)

	vocab := make(map[string]int, len(tokens))
	idf := make([]float64, len(tokens))
	n := float64(len(samples))
	for i, tok := range tokens {
		vocab[tok] = i
		idf[i] = math.Log((1+n)/(1+float64(docFreq[tok]))) + 1
	}
	return vocab, idf
}

// vectorize produces an L2-normalized TF-IDF vector.
func vectorize(text string, vocab map[string]int, idf []float64) []float64 {
	x := make([]float64, len(vocab))
	for _, tok := range tokenize(text) {
		if i, ok := vocab[tok]; ok {
			x[i] += idf[i]
		}
	}
	var norm float64
	for _, v := range x {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range x {
			x[i] /= norm
		}
	}
	return x
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
