package models

import "time"

// Category is a user-defined classification bucket. Names are unique within
// the store. Deleting a category uncategorizes referencing transactions and
// removes the rules that target it.
type Category struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}
