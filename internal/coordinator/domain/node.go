package domain

import (
	"errors"
	"net/netip"
)

var (
	ErrRankNotFound     = errors.New("rank not found")
	ErrLocalRank        = errors.New("rank 0 is the local master, not a network destination")
	ErrMasterRegistered = errors.New("master node already registered")
	ErrMasterFirst      = errors.New("master node must be registered first")
)

// MasterRank is the rank of the local coordinating process. It is never a
// network destination.
const MasterRank = 0

// Node is one participant in the computation. Its rank is implicit: the
// position of the node in the Registry.
type Node struct {
	// IP is the IPv4 address the node's agent listens on. Zero value for
	// the local master, which never receives packets.
	IP netip.Addr
	// UDPPort is the agent's UDP port. Zero for the local master.
	UDPPort uint16
	// CoreID is the CPU core the worker on that node binds to.
	CoreID uint16
}

// Registry is the ordered set of participating nodes, unique by rank.
// Rank 0 is the local master; ranks 1..N-1 follow hosts-file order.
// It is mutated only during initialization and read-only afterwards.
type Registry struct {
	nodes []Node
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// RegisterMaster inserts the rank-0 entry. It must be called exactly once,
// before any Add.
func (r *Registry) RegisterMaster() error {
	if len(r.nodes) > 0 {
		return ErrMasterRegistered
	}
	r.nodes = append(r.nodes, Node{})
	return nil
}

// Add appends a remote node and returns its assigned rank.
func (r *Registry) Add(n Node) (int, error) {
	if len(r.nodes) == 0 {
		return 0, ErrMasterFirst
	}
	r.nodes = append(r.nodes, n)
	return len(r.nodes) - 1, nil
}

// Get returns the node at the given rank. Out-of-range ranks are a defined
// failure, not a panic.
func (r *Registry) Get(rank int) (Node, error) {
	if rank < 0 || rank >= len(r.nodes) {
		return Node{}, ErrRankNotFound
	}
	return r.nodes[rank], nil
}

// Count returns the total number of registered nodes, master included.
func (r *Registry) Count() int {
	return len(r.nodes)
}
