package classifier

// Sample is one training example: a claim text and a compliance likelihood
// in [0,1], where 1 means almost certainly acceptable and 0 almost certainly
// not.
type Sample struct {
	Text  string
	Label float64
}

// SeedSamples is the fixed seed set the classifier trains on in addition to
// the policy's claim/directive pairs. Kept small and stable so retraining
// from the same policy is reproducible.
func SeedSamples() []Sample {
	return []Sample{
		{"organic certified", 1.0},
		{"natural ingredients", 0.8},
		{"artificial flavoring", 0.2},
		{"lab tested", 0.9},
		{"medical claim", 0.1},
		{"therapeutic benefit", 0.1},
		{"nutritionally balanced", 0.7},
		{"preservative free", 0.8},
		{"chemical free", 0.3}, // often misleading
		{"scientifically proven", 0.6},
	}
}
