package ksignal

import (
	"fmt"
	"strings"
)

// NodeInfo is a point-in-time description of one signal.
type NodeInfo struct {
	ID         NodeID
	Name       string
	State      State
	Flow       Flow
	Sticky     bool
	Eager      bool
	Source     NodeID
	Targets    []NodeID
	Dependants []NodeID
	Buffered   int
}

// Topology is a snapshot of the live signals of a graph in creation order.
type Topology struct {
	Nodes []NodeInfo
}

// Describe returns a snapshot of the live signals of g.
func (g *Graph) Describe() Topology {
	ids := g.liveIDs()
	t := Topology{Nodes: make([]NodeInfo, 0, len(ids))}
	for _, id := range ids {
		s := g.nodes[id]
		info := NodeInfo{
			ID:         s.id,
			Name:       s.name,
			State:      s.state,
			Flow:       s.flow,
			Sticky:     s.sticky,
			Eager:      s.eager,
			Targets:    idsOf(s.targets),
			Dependants: idsOf(s.dependants),
			Buffered:   len(s.outBuffer),
		}
		if src := s.Source(); src != nil {
			info.Source = src.id
		}
		t.Nodes = append(t.Nodes, info)
	}
	return t
}

// Node returns the description of the signal with the given id.
func (t Topology) Node(id NodeID) (NodeInfo, bool) {
	for _, n := range t.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeInfo{}, false
}

// String renders one line per signal:
//
//	map#3 [connected active] <- #1 -> [#4 #5] deps [#7]
func (t Topology) String() string {
	var b strings.Builder
	for _, n := range t.Nodes {
		fmt.Fprintf(&b, "%s [%s %s", nodeLabel(n.ID, n.Name), n.State, n.Flow)
		if n.Sticky {
			b.WriteString(" sticky")
		}
		if n.Buffered > 0 {
			fmt.Fprintf(&b, " buffered=%d", n.Buffered)
		}
		b.WriteString("]")
		if n.Source != 0 {
			fmt.Fprintf(&b, " <- #%d", n.Source)
		}
		if len(n.Targets) > 0 {
			fmt.Fprintf(&b, " -> %s", formatIDs(n.Targets))
		}
		if len(n.Dependants) > 0 {
			fmt.Fprintf(&b, " deps %s", formatIDs(n.Dependants))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func idsOf(list []*Signal) []NodeID {
	if len(list) == 0 {
		return nil
	}
	ids := make([]NodeID, len(list))
	for i, s := range list {
		ids[i] = s.id
	}
	return ids
}

func formatIDs(ids []NodeID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("#%d", id)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
