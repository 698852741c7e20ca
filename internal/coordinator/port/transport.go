package port

//go:generate mockgen -destination=../service/mocks/transport_mock.go -package=mocks -source=transport.go

// Transport moves raw datagrams between the coordinator and remote node
// agents over a single unreliable endpoint. There is no connection state,
// no retransmission and no delivery guarantee.
type Transport interface {
	// SendTo resolves rank to its registered node and transmits one
	// datagram. A short write is treated as total failure.
	SendTo(rank int, packet []byte) error

	// ReceiveAny blocks until one datagram arrives from any peer, fills buf
	// up to its capacity and returns the received length. It does no peer
	// filtering; callers must validate the packet themselves. With no
	// receive deadline configured it blocks indefinitely.
	ReceiveAny(buf []byte) (int, error)
}
