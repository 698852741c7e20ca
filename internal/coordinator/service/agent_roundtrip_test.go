package service

import (
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anthanhphan/go-mpi-coordinator/internal/coordinator/adapter/outbound/udp"
	"github.com/anthanhphan/go-mpi-coordinator/internal/coordinator/config"
	"github.com/anthanhphan/go-mpi-coordinator/internal/coordinator/domain"
	"github.com/anthanhphan/go-mpi-coordinator/pkg/wire"
)

// scriptedAgent is a minimal stand-in for the remote worker-side agent: it
// answers RECV pull requests with a fixed series of data datagrams and
// acknowledges TERMINATE.
type scriptedAgent struct {
	conn    *net.UDPConn
	batches [][]int32
}

func startScriptedAgent(t *testing.T, batches [][]int32) *scriptedAgent {
	t.Helper()

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	agent := &scriptedAgent{conn: conn, batches: batches}
	go agent.serve()
	return agent
}

func (a *scriptedAgent) port() uint16 {
	return uint16(a.conn.LocalAddr().(*net.UDPAddr).Port)
}

func (a *scriptedAgent) serve() {
	buf := make([]byte, wire.MaxPacketSize)
	for {
		n, requester, err := a.conn.ReadFromUDP(buf)
		if err != nil {
			return
		}

		header, err := wire.DecodeHeader(buf[:n])
		if err != nil {
			continue
		}

		switch header.Operation {
		case wire.OpRecv:
			for _, batch := range a.batches {
				response, err := wire.NewPacket(wire.Header{
					Operation: wire.OpRecv,
					Datatype:  wire.DatatypeInt32,
					Datacount: uint16(len(batch)),
				}, wire.EncodeInt32s(batch))
				if err != nil {
					return
				}
				if _, err := a.conn.WriteToUDP(response, requester); err != nil {
					return
				}
			}
		case wire.OpTerminate:
			ack, err := wire.NewPacket(wire.Header{
				Operation: wire.OpTerminate,
				Result:    wire.ResultSuccess,
			}, nil)
			if err != nil {
				return
			}
			if _, err := a.conn.WriteToUDP(ack, requester); err != nil {
				return
			}
		}
	}
}

func TestReceive_RoundTripOverUDP(t *testing.T) {
	agent := startScriptedAgent(t, [][]int32{{1, 2, 3}, {4, 5}})

	registry := domain.NewRegistry()
	require.NoError(t, registry.RegisterMaster())
	_, err := registry.Add(domain.Node{
		IP:      netip.MustParseAddr("127.0.0.1"),
		UDPPort: agent.port(),
	})
	require.NoError(t, err)

	// A deadline keeps a broken exchange from hanging the test run; the
	// production default is no deadline.
	transport, err := udp.NewTransportAdapter(registry, config.TransportConfig{ReceiveTimeout: 5 * time.Second})
	require.NoError(t, err)
	defer transport.Close()

	svc := NewCommunicatorService(registry, transport)

	buf := make([]byte, 5*4)
	require.NoError(t, svc.Receive(1, wire.DatatypeInt32, 5, buf))
	assert.Equal(t, []int32{1, 2, 3, 4, 5}, wire.DecodeInt32s(buf, 5))
}

func TestTerminateAll_RoundTripOverUDP(t *testing.T) {
	agents := []*scriptedAgent{
		startScriptedAgent(t, nil),
		startScriptedAgent(t, nil),
	}

	registry := domain.NewRegistry()
	require.NoError(t, registry.RegisterMaster())
	for _, agent := range agents {
		_, err := registry.Add(domain.Node{
			IP:      netip.MustParseAddr("127.0.0.1"),
			UDPPort: agent.port(),
		})
		require.NoError(t, err)
	}

	transport, err := udp.NewTransportAdapter(registry, config.TransportConfig{ReceiveTimeout: 5 * time.Second})
	require.NoError(t, err)
	defer transport.Close()

	svc := NewCommunicatorService(registry, transport)
	assert.NoError(t, svc.TerminateAll())
}
