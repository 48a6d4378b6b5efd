// Package extraction drives an external oracle over quotation sources and
// consolidates its answers into a proposal table.
//
// An Engine runs a short, strictly sequential loop. The first attempt sends
// the full source bundle; every later attempt sends a refinement prompt that
// carries the best table so far and the pending issues reported by
// proposal.Evaluate. Each successful answer is merged positionally into the
// running best with proposal.Merge and the loop stops as soon as the table is
// complete or the attempt budget is spent.
//
// Oracle failures never reach the caller. Transport errors and answers that
// violate the result schema become warnings plus an attempt record flagged as
// an error. When the oracle also implements FileStore, source files are
// uploaded once per run and released on every exit path.
package extraction
