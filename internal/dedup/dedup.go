// Package dedup derives content-addressed keys for transactions so that
// re-importing the same statement never duplicates records.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fabian-plaehn/financeanalyzer/internal/models"
)

// Key returns a stable hex digest over the identity of a transaction:
// ISO date, canonical amount string, description and source. Two
// transactions are duplicates iff their keys are equal. SHA-256 is used for
// collision resistance, not secrecy.
func Key(date time.Time, amount decimal.Decimal, description, source string) string {
	content := fmt.Sprintf("%s|%s|%s|%s",
		date.Format("2006-01-02"), amount.String(), description, source)
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// KeyFor computes the dedup key from a canonical transaction record.
func KeyFor(t *models.Transaction) string {
	return Key(t.Date, t.Amount, t.Description, t.Source)
}
