package app

import "github.com/dkeye/Relay/internal/domain"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
)

// Policy decides what happens to a session whose send buffer is full.
type Policy interface {
	OnBackPressure(sid domain.ConnectionID) BackpressureAction
}

type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(domain.ConnectionID) BackpressureAction {
	return KickMember
}

// TolerantPolicy drops the event for the slow session and keeps it connected.
type TolerantPolicy struct{}

func (TolerantPolicy) OnBackPressure(domain.ConnectionID) BackpressureAction {
	return NoAction
}

func PolicyByName(name string) Policy {
	if name == "ignore" {
		return TolerantPolicy{}
	}
	return SimplePolicy{}
}
