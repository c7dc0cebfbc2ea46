package model

// CanonicalStatus is the normalized lifecycle state of a message. Every
// vendor-specific status string maps to exactly one of these four values.
type CanonicalStatus string

const (
	StatusSent      CanonicalStatus = "sent"
	StatusDelivered CanonicalStatus = "delivered"
	StatusRead      CanonicalStatus = "read"
	StatusFailed    CanonicalStatus = "failed"
)

func (s CanonicalStatus) Valid() bool {
	switch s {
	case StatusSent, StatusDelivered, StatusRead, StatusFailed:
		return true
	}
	return false
}
