package viewmodel

import (
	"time"

	"github.com/patel-jhanvi/amrap-gym/internal/user"
)

const dateLayout = "2006-01-02"

// MemberSinceSource says where a MemberSince value came from.
type MemberSinceSource int

const (
	SinceUnknown MemberSinceSource = iota
	SinceFirstJoin
	SinceAccountCreated
)

type MemberSince struct {
	at     time.Time
	source MemberSinceSource
}

func (m MemberSince) Time() (time.Time, bool) {
	return m.at, m.source != SinceUnknown
}

func (m MemberSince) Source() MemberSinceSource { return m.source }

func (m MemberSince) String() string {
	if m.source == SinceUnknown {
		return "unknown"
	}
	return m.at.Format(dateLayout)
}

// ComputeMemberSince returns the earliest join date across edges, falling
// back to the account creation time.
func ComputeMemberSince(u user.User, edges []GymEdge) MemberSince {
	var earliest time.Time
	for _, e := range edges {
		if e.JoinDate.IsZero() {
			continue
		}
		if earliest.IsZero() || e.JoinDate.Before(earliest) {
			earliest = e.JoinDate
		}
	}
	if !earliest.IsZero() {
		return MemberSince{at: earliest, source: SinceFirstJoin}
	}
	if u.CreatedAt != nil && !u.CreatedAt.IsZero() {
		return MemberSince{at: *u.CreatedAt, source: SinceAccountCreated}
	}
	return MemberSince{}
}
