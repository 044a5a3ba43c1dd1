package entity

// SlotFilter is a domain-level filter for querying slots.
// Used by repository layer to avoid coupling with delivery DTOs.
type SlotFilter struct {
	Status SlotStatus // Empty means any status
	Date   string     // Format: YYYY-MM-DD, exact day
	From   string     // Format: YYYY-MM-DD, inclusive
	To     string     // Format: YYYY-MM-DD, inclusive
}
