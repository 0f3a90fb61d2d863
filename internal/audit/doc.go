// Package audit evaluates page metrics against a fixed rule set and
// classifies issue text.
//
// The Evaluator produces tagged issues: each carries a model.IssueKind and
// its severity comes from the kind, never from the message. ClassifyText is
// the keyword classifier kept for issue text that has no tag, such as
// messages loaded from score history written by older releases.
package audit
