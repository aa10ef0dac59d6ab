package orchestrators

import (
	"time"

	"github.com/google/uuid"

	"lembah/internal/domain/member"
)

// Clock supplies the business date. Zero values mean time.Now in UTC.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

// Today returns the current calendar date in the clock's location.
func (c Clock) Today() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return member.Today(now(), c.Location)
}

// newID returns gen() or a random UUID when gen is nil.
func newID(gen func() string) string {
	if gen != nil {
		return gen()
	}
	return uuid.NewString()
}
