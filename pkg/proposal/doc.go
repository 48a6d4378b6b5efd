// Package proposal holds the quotation comparison table: the Proposal row,
// the field-level merge used to consolidate extraction attempts, the
// selection and minimum-row invariants, and the completeness verdict that
// decides whether another extraction attempt is worth making.
package proposal
