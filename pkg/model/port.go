package model

import "strconv"

// Port kinds found in model files. Kinds other than in and out are control
// ports.
const (
	PortIn       = "in"
	PortOut      = "out"
	PortEnable   = "enable"
	PortTrigger  = "trigger"
	PortIfAction = "ifaction"
	PortReset    = "reset"
	PortState    = "state"
	PortLConn    = "lconn"
	PortRConn    = "rconn"
)

// Port is a connection point on a Block.
type Port struct {
	Kind       string // in, out or a control kind
	Index      int    // 1-based
	Name       string
	Properties Properties
}

// ID returns the port's identifier within its block, e.g. "out:1".
func (p *Port) ID() string {
	return PortID(p.Kind, p.Index)
}

// PortID formats a port identifier from kind and index.
func PortID(kind string, index int) string {
	return kind + ":" + strconv.Itoa(index)
}

func (p *Port) clone() Port {
	c := *p
	c.Properties = p.Properties.Clone()
	return c
}

func (p *Port) equal(o *Port) bool {
	return p.Kind == o.Kind && p.Index == o.Index && p.Name == o.Name && p.Properties.Equal(o.Properties)
}

// PortRef addresses a Port of a Block in the same System.
type PortRef struct {
	Block string // SID
	Kind  string
	Index int
}

// PortID returns the referenced port's identifier.
func (r PortRef) PortID() string {
	return PortID(r.Kind, r.Index)
}

// String formats the reference as "SID#kind:index".
func (r PortRef) String() string {
	return r.Block + "#" + r.PortID()
}
