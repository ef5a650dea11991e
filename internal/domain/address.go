package domain

import "strconv"

// Address identifies a deliverable chat target: either a resolved numeric
// chat ID or a display handle. Exactly one of the two fields is set.
type Address struct {
	ID     int64
	Handle string
}

// Numeric returns an address for a resolved chat ID.
func Numeric(id int64) Address {
	return Address{ID: id}
}

// ByHandle returns an address for an unresolved display handle.
func ByHandle(name string) Address {
	return Address{Handle: name}
}

// IsNumeric reports whether the address carries a resolved chat ID.
func (a Address) IsNumeric() bool {
	return a.ID != 0
}

// String returns a loggable form of the address.
func (a Address) String() string {
	if a.IsNumeric() {
		return strconv.FormatInt(a.ID, 10)
	}
	return "@" + a.Handle
}
