package udp

import (
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anthanhphan/go-mpi-coordinator/internal/coordinator/config"
	"github.com/anthanhphan/go-mpi-coordinator/internal/coordinator/domain"
)

// newLoopbackPeer binds a UDP socket standing in for a remote agent.
func newLoopbackPeer(t *testing.T) *net.UDPConn {
	t.Helper()

	peer, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = peer.Close() })
	return peer
}

func newLoopbackRegistry(t *testing.T, peerPort int) *domain.Registry {
	t.Helper()

	registry := domain.NewRegistry()
	require.NoError(t, registry.RegisterMaster())
	_, err := registry.Add(domain.Node{
		IP:      netip.MustParseAddr("127.0.0.1"),
		UDPPort: uint16(peerPort),
		CoreID:  0,
	})
	require.NoError(t, err)
	return registry
}

func TestSendTo_DeliversDatagram(t *testing.T) {
	peer := newLoopbackPeer(t)
	registry := newLoopbackRegistry(t, peer.LocalAddr().(*net.UDPAddr).Port)

	transport, err := NewTransportAdapter(registry, config.TransportConfig{})
	require.NoError(t, err)
	defer transport.Close()

	payload := []byte("one datagram, delivered whole")
	require.NoError(t, transport.SendTo(1, payload))

	require.NoError(t, peer.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 2048)
	n, _, err := peer.ReadFromUDP(buf)
	require.NoError(t, err)
	assert.Equal(t, payload, buf[:n])
}

func TestSendTo_RejectsUnknownRank(t *testing.T) {
	registry := newLoopbackRegistry(t, 6700)

	transport, err := NewTransportAdapter(registry, config.TransportConfig{})
	require.NoError(t, err)
	defer transport.Close()

	assert.ErrorIs(t, transport.SendTo(7, []byte("x")), domain.ErrRankNotFound)
}

func TestSendTo_RejectsMasterRank(t *testing.T) {
	registry := newLoopbackRegistry(t, 6700)

	transport, err := NewTransportAdapter(registry, config.TransportConfig{})
	require.NoError(t, err)
	defer transport.Close()

	assert.ErrorIs(t, transport.SendTo(0, []byte("x")), domain.ErrLocalRank)
}

func TestReceiveAny_ReturnsReceivedLength(t *testing.T) {
	peer := newLoopbackPeer(t)
	registry := newLoopbackRegistry(t, peer.LocalAddr().(*net.UDPAddr).Port)

	// Deadline set so a delivery failure fails the test instead of hanging.
	transport, err := NewTransportAdapter(registry, config.TransportConfig{ReceiveTimeout: 2 * time.Second})
	require.NoError(t, err)
	defer transport.Close()

	payload := []byte{0x01, 0x02, 0x03}
	_, err = peer.WriteToUDP(payload, transport.LocalAddr())
	require.NoError(t, err)

	buf := make([]byte, 64)
	n, err := transport.ReceiveAny(buf)
	require.NoError(t, err)
	assert.Equal(t, payload, buf[:n])
}

func TestReceiveAny_ConfiguredDeadline(t *testing.T) {
	registry := newLoopbackRegistry(t, 6700)

	transport, err := NewTransportAdapter(registry, config.TransportConfig{ReceiveTimeout: 50 * time.Millisecond})
	require.NoError(t, err)
	defer transport.Close()

	_, err = transport.ReceiveAny(make([]byte, 64))
	assert.Error(t, err)
}
