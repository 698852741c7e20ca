package service

import (
	"errors"
	"fmt"
	"math"

	"github.com/anthanhphan/go-mpi-coordinator/internal/coordinator/domain"
	"github.com/anthanhphan/go-mpi-coordinator/pkg/wire"
	"github.com/anthanhphan/gosdk/logger"
)

var ErrInvalidCount = errors.New("invalid element count")

// messagingService implements typed point-to-point data exchange with
// individual ranks.
type messagingService struct {
	svc *CommunicatorService
}

func newMessagingService(svc *CommunicatorService) *messagingService {
	return &messagingService{svc: svc}
}

// send transmits count elements of datatype from buf to the destination
// rank as one SEND datagram. All validation happens before any network I/O;
// transfers that do not fit a single datagram fail rather than fragment.
// Success means handed to the transport, not received by the peer.
func (m *messagingService) send(dest int, datatype wire.Datatype, count int, buf []byte) error {
	elemSize, err := datatype.ElemSize()
	if err != nil {
		return err
	}
	if count < 0 {
		return fmt.Errorf("%w: negative element count %d", ErrInvalidCount, count)
	}

	payloadSize := count * elemSize
	if wire.HeaderSize+payloadSize > wire.MaxPacketSize {
		return fmt.Errorf("%d elements of %d bytes: %w", count, elemSize, wire.ErrPayloadTooLarge)
	}
	if payloadSize > len(buf) {
		return fmt.Errorf("send buffer holds %d of %d bytes", len(buf), payloadSize)
	}

	if err := m.checkRemoteRank(dest); err != nil {
		return err
	}

	packet, err := wire.NewPacket(wire.Header{
		Operation: wire.OpSend,
		RankID:    uint16(dest),
		Datatype:  datatype,
		Datacount: uint16(count),
	}, buf[:payloadSize])
	if err != nil {
		return err
	}

	if err := m.svc.transport.SendTo(dest, packet); err != nil {
		return fmt.Errorf("failed to send data to rank %d: %w", dest, err)
	}

	return nil
}

// receive pulls count elements of datatype from the source rank into buf.
// It sends a RECV request and then blocks collecting RECV response
// datagrams until the requested element count is satisfied; a single
// response may carry fewer elements than requested. Datagrams with any
// other opcode are logged and discarded; with no receive deadline
// configured, a silent peer blocks the call indefinitely. On failure buf is
// left partially populated.
func (m *messagingService) receive(source int, datatype wire.Datatype, count int, buf []byte) error {
	elemSize, err := datatype.ElemSize()
	if err != nil {
		return err
	}
	if count < 0 || count > math.MaxUint16 {
		return fmt.Errorf("%w: %d does not fit the datacount header field", ErrInvalidCount, count)
	}
	if count*elemSize > len(buf) {
		return fmt.Errorf("receive buffer holds %d of %d bytes", len(buf), count*elemSize)
	}

	if err := m.checkRemoteRank(source); err != nil {
		return err
	}

	request, err := wire.NewPacket(wire.Header{
		Operation: wire.OpRecv,
		RankID:    uint16(source),
		Datatype:  datatype,
		Datacount: uint16(count),
	}, nil)
	if err != nil {
		return err
	}

	if err := m.svc.transport.SendTo(source, request); err != nil {
		return fmt.Errorf("failed to send receive request to rank %d: %w", source, err)
	}

	packet := make([]byte, wire.MaxPacketSize)
	for received := 0; received < count; {
		n, err := m.svc.transport.ReceiveAny(packet)
		if err != nil {
			return fmt.Errorf("failed to receive data from rank %d: %w", source, err)
		}

		header, err := wire.DecodeHeader(packet[:n])
		if err != nil {
			logger.Warnw("Discarding malformed datagram", "bytes", n, "error", err.Error())
			continue
		}

		// Responses are correlated by opcode only; anything else is noise
		// from an unrelated exchange.
		if header.Operation != wire.OpRecv {
			logger.Warnw("Discarding unexpected response", "op", header.Operation.String(), "rank", source)
			continue
		}

		payload := packet[wire.HeaderSize:n]
		avail := len(payload) / elemSize
		if avail > int(header.Datacount) {
			avail = int(header.Datacount)
		}

		for j := 0; j < avail && received < count; j++ {
			elem := payload[j*elemSize : (j+1)*elemSize]

			switch datatype {
			case wire.DatatypeInt32:
				copy(buf[received*4:], elem)
			case wire.DatatypeUint8:
				buf[received] = elem[0]
			default:
				return fmt.Errorf("decode: %w", wire.ErrUnsupportedDatatype)
			}
			received++
		}
	}

	return nil
}

func (m *messagingService) checkRemoteRank(rank int) error {
	if rank == domain.MasterRank {
		return domain.ErrLocalRank
	}
	if _, err := m.svc.registry.Get(rank); err != nil {
		return fmt.Errorf("rank %d: %w", rank, err)
	}
	return nil
}
