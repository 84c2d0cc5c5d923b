package classifier

import (
	"path/filepath"
	"testing"

	"mercator-hq/ceres/pkg/claims"
	"mercator-hq/ceres/pkg/policy"
)

func trainingPolicy(t *testing.T) *policy.Policy {
	t.Helper()
	p, err := policy.Load([]byte(`
rules:
  - claim: "100% Organic"
    directive: PASS_IF_CERT
  - claim: "Certified Vegan"
    directive: PASS
  - claim: "cures cancer"
    directive: FAIL
  - claim: "prevents disease"
    directive: FAIL
  - claim: "boosts immunity"
    directive: REVIEW
`))
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestDegradedMode(t *testing.T) {
	c := New(nil)
	if c.Available() {
		t.Fatal("untrained classifier must not be available")
	}

	result := c.Classify("anything at all")
	if result.Available {
		t.Error("degraded result must report unavailable")
	}
	if result.Directive != claims.DirectiveReview {
		t.Errorf("degraded directive = %q, want REVIEW", result.Directive)
	}
	if result.Confidence != 0.5 {
		t.Errorf("degraded confidence = %v, want 0.5", result.Confidence)
	}
}

func TestTrainDeterministic(t *testing.T) {
	p := trainingPolicy(t)

	a := New(nil)
	a.Train(p)
	b := New(nil)
	b.Train(p)

	if !a.Available() || !b.Available() {
		t.Fatal("both classifiers should be trained")
	}

	inputs := []string{
		"100% organic produce",
		"this cures cancer",
		"boosts immunity fast",
		"completely unrelated text",
	}
	for _, in := range inputs {
		ra, rb := a.Classify(in), b.Classify(in)
		if ra != rb {
			t.Errorf("Classify(%q) differs between identically trained models: %+v vs %+v", in, ra, rb)
		}
	}
}

func TestClassifyDirections(t *testing.T) {
	c := New(nil)
	c.Train(trainingPolicy(t))

	// Training texts themselves should score on the right side.
	pass := c.Classify("certified vegan")
	fail := c.Classify("cures cancer")
	if pass.Directive == claims.DirectiveFail {
		t.Errorf("positive training text classified FAIL (confidence %.2f)", pass.Confidence)
	}
	if fail.Directive == claims.DirectivePass {
		t.Errorf("negative training text classified PASS (confidence %.2f)", fail.Confidence)
	}
}

func TestAbstainThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AbstainBelow = 1.1 // force abstention on every input
	c := New(cfg)
	c.Train(trainingPolicy(t))

	for _, in := range []string{"certified vegan", "cures cancer", "nothing known"} {
		result := c.Classify(in)
		if result.Directive != claims.DirectiveReview {
			t.Errorf("Classify(%q) = %q, want REVIEW when confidence below abstain threshold", in, result.Directive)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	p := trainingPolicy(t)
	trained := New(nil)
	trained.Train(p)

	path := filepath.Join(t.TempDir(), "model.json")
	if err := trained.SaveFile(path); err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}

	loaded := New(nil)
	if err := loaded.LoadFile(path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if !loaded.Available() {
		t.Fatal("loaded classifier should be available")
	}

	for _, in := range []string{"100% organic", "cures cancer", "new unseen claim"} {
		if got, want := loaded.Classify(in), trained.Classify(in); got != want {
			t.Errorf("Classify(%q) after load = %+v, want %+v", in, got, want)
		}
	}
}

func TestSaveWithoutModel(t *testing.T) {
	c := New(nil)
	err := c.SaveFile(filepath.Join(t.TempDir(), "model.json"))
	if !claims.IsInvalidInput(err) {
		t.Errorf("got %v, want InvalidInputError", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	c := New(nil)
	if err := c.LoadFile(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing model file")
	}
	if c.Available() {
		t.Error("classifier must stay unavailable after failed load")
	}
}

func BenchmarkClassify(b *testing.B) {
	p, err := policy.Load([]byte(`
rules:
  - claim: "100% Organic"
    directive: PASS
  - claim: "cures cancer"
    directive: FAIL
`))
	if err != nil {
		b.Fatal(err)
	}
	c := New(nil)
	c.Train(p)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Classify("locally sourced organic ingredients with proven health benefits")
	}
}
