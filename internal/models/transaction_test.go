package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDescription(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "collapses runs", in: "Miete   Mai\t2023", want: "Miete Mai 2023"},
		{name: "trims edges", in: "  REWE  ", want: "REWE"},
		{name: "newlines become spaces", in: "a\nb", want: "a b"},
		{name: "empty stays empty", in: "   ", want: ""},
		{name: "already clean", in: "Gehalt", want: "Gehalt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDescription(tt.in))
		})
	}
}

func TestTruncateToDay(t *testing.T) {
	berlin, _ := time.LoadLocation("Europe/Berlin")
	in := time.Date(2025, time.December, 14, 18, 30, 12, 999, berlin)

	got := TruncateToDay(in)
	assert.Equal(t, time.Date(2025, time.December, 14, 0, 0, 0, 0, time.UTC), got)
	assert.Equal(t, time.UTC, got.Location())
}

func TestFieldText(t *testing.T) {
	tx := &Transaction{Description: "desc", SenderReceiver: "sender"}

	assert.Equal(t, "desc", tx.FieldText(MatchFieldDescription))
	assert.Equal(t, "sender", tx.FieldText(MatchFieldSenderReceiver))
}

func TestIsCategorized(t *testing.T) {
	tx := &Transaction{}
	assert.False(t, tx.IsCategorized())

	id := int64(1)
	tx.CategoryID = &id
	assert.True(t, tx.IsCategorized())
}

func TestValidRuleType(t *testing.T) {
	assert.True(t, ValidRuleType(RuleTypeContains))
	assert.True(t, ValidRuleType(RuleTypeRegex))
	assert.False(t, ValidRuleType("glob"))
	assert.False(t, ValidRuleType(""))
}

func TestValidMatchField(t *testing.T) {
	assert.True(t, ValidMatchField(MatchFieldDescription))
	assert.True(t, ValidMatchField(MatchFieldSenderReceiver))
	assert.True(t, ValidMatchField(MatchFieldAny))
	assert.False(t, ValidMatchField("subject"))
}
