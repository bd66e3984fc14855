package ledger

// Collection names a record collection in change notifications and slot keys.
type Collection string

const (
	ColCredits  Collection = "credits"
	ColExpenses Collection = "expenses"
	ColUdhaar   Collection = "udhaar"
	ColContacts Collection = "contacts"
	ColAll      Collection = "all"
)

// Op is the kind of mutation a change notification describes.
type Op string

const (
	OpCreate  Op = "create"
	OpUpdate  Op = "update"
	OpDelete  Op = "delete"
	OpReplace Op = "replace"
)

// Change tells a subscriber that one mutation was applied in full. The store
// never decides what to refresh or persist; subscribers do.
type Change struct {
	Collection Collection `json:"collection"`
	Op         Op         `json:"op"`
	ID         string     `json:"id,omitempty"`
}

// Listener receives change notifications.
type Listener func(Change)
