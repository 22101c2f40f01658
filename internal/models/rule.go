package models

import "time"

// RuleType selects how a rule's pattern is evaluated.
type RuleType string

const (
	// RuleTypeContains performs a case-insensitive substring test.
	RuleTypeContains RuleType = "contains"
	// RuleTypeRegex performs a case-insensitive regular-expression search.
	RuleTypeRegex RuleType = "regex"
)

// MatchField selects which transaction field(s) a rule is tested against.
type MatchField string

const (
	MatchFieldDescription    MatchField = "description"
	MatchFieldSenderReceiver MatchField = "sender_receiver"
	MatchFieldAny            MatchField = "any"
)

// Rule maps matching transactions to a target category. Only enabled rules
// participate in classification. Rules are owned by the CRUD layer; the
// matching engine never mutates them.
type Rule struct {
	ID               int64
	TargetCategoryID int64
	Type             RuleType
	Pattern          string
	MatchField       MatchField
	Enabled          bool
	CreatedAt        time.Time
}

// ValidRuleType reports whether t is one of the supported rule types.
func ValidRuleType(t RuleType) bool {
	return t == RuleTypeContains || t == RuleTypeRegex
}

// ValidMatchField reports whether f is one of the supported match fields.
func ValidMatchField(f MatchField) bool {
	return f == MatchFieldDescription || f == MatchFieldSenderReceiver || f == MatchFieldAny
}
