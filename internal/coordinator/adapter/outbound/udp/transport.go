// Package udp implements port.Transport on a single unreliable datagram
// socket shared by launch, messaging and termination.
package udp

import (
	"fmt"
	"net"
	"time"

	"github.com/anthanhphan/go-mpi-coordinator/internal/coordinator/config"
	"github.com/anthanhphan/go-mpi-coordinator/internal/coordinator/domain"
	"github.com/anthanhphan/go-mpi-coordinator/internal/coordinator/port"
	"github.com/anthanhphan/gosdk/logger"
)

// TransportAdapter implements port.Transport over one UDP socket bound to an
// ephemeral local port. It is not safe for concurrent use; the coordinator
// is single-threaded by construction.
type TransportAdapter struct {
	conn           *net.UDPConn
	registry       *domain.Registry
	receiveTimeout time.Duration
}

// Ensure TransportAdapter implements port.Transport.
var _ port.Transport = (*TransportAdapter)(nil)

// NewTransportAdapter creates and binds the datagram endpoint. The socket is
// created once and lives for the whole run.
func NewTransportAdapter(registry *domain.Registry, cfg config.TransportConfig) (*TransportAdapter, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	if err != nil {
		return nil, fmt.Errorf("failed to bind UDP socket: %w", err)
	}

	return &TransportAdapter{
		conn:           conn,
		registry:       registry,
		receiveTimeout: cfg.ReceiveTimeout,
	}, nil
}

// SendTo transmits one datagram to the agent of the given remote rank.
func (t *TransportAdapter) SendTo(rank int, packet []byte) error {
	if rank == domain.MasterRank {
		return domain.ErrLocalRank
	}

	node, err := t.registry.Get(rank)
	if err != nil {
		return fmt.Errorf("rank %d: %w", rank, err)
	}

	addr := &net.UDPAddr{
		IP:   node.IP.AsSlice(),
		Port: int(node.UDPPort),
	}

	n, err := t.conn.WriteToUDP(packet, addr)
	if err != nil {
		return fmt.Errorf("failed to send UDP datagram to rank %d: %w", rank, err)
	}
	if n != len(packet) {
		return fmt.Errorf("short UDP write to rank %d: sent %d of %d bytes", rank, n, len(packet))
	}

	logger.Debugw("Datagram sent", "rank", rank, "bytes", n, "addr", addr.String())
	return nil
}

// ReceiveAny blocks until one datagram arrives from any peer.
func (t *TransportAdapter) ReceiveAny(buf []byte) (int, error) {
	if t.receiveTimeout > 0 {
		if err := t.conn.SetReadDeadline(time.Now().Add(t.receiveTimeout)); err != nil {
			return 0, fmt.Errorf("failed to set receive deadline: %w", err)
		}
	}

	n, addr, err := t.conn.ReadFromUDP(buf)
	if err != nil {
		return 0, fmt.Errorf("failed to receive UDP datagram: %w", err)
	}

	logger.Debugw("Datagram received", "bytes", n, "addr", addr.String())
	return n, nil
}

// LocalAddr returns the bound endpoint address.
func (t *TransportAdapter) LocalAddr() *net.UDPAddr {
	return t.conn.LocalAddr().(*net.UDPAddr)
}

// Close releases the datagram endpoint.
func (t *TransportAdapter) Close() error {
	return t.conn.Close()
}
