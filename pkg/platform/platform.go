// Package platform describes what the hosting runtime can do. Components
// consult it instead of probing the environment themselves, so the same
// code runs inert during a server-side rendering pass.
package platform

type Capabilities interface {
	HasStorage() bool
	CanOpenSocket() bool
}

type capabilities struct {
	storage bool
	socket  bool
}

func (c capabilities) HasStorage() bool    { return c.storage }
func (c capabilities) CanOpenSocket() bool { return c.socket }

// Native reports a fully interactive runtime.
func Native() Capabilities {
	return capabilities{storage: true, socket: true}
}

// Headless reports a rendering-only runtime with no persistent storage
// and no socket support.
func Headless() Capabilities {
	return capabilities{}
}
