// Package classifier implements the fallback claim classifier consulted
// when no policy rule matches a claim.
//
// The model is a logistic regression over TF-IDF features, trained from the
// policy's claim/directive pairs plus a small fixed seed set. Training is
// deterministic: the random seed is part of the Config contract, so the same
// policy and configuration always reproduce the same model.
//
// The behavioral contract is the threshold mapping, not the algorithm:
// confidence below 0.6 abstains to REVIEW, a score above 0.7 maps to PASS,
// below 0.3 to FAIL, and the remainder to REVIEW. An unavailable model is a
// degraded mode, not an error: Classify then returns {REVIEW, 0.5,
// unavailable}.
package classifier
