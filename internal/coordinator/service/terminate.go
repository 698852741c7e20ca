package service

import (
	"fmt"

	"github.com/anthanhphan/go-mpi-coordinator/pkg/wire"
	"github.com/anthanhphan/gosdk/logger"
)

// terminateService coordinates orderly shutdown of the remote workers.
type terminateService struct {
	svc *CommunicatorService
}

func newTerminateService(svc *CommunicatorService) *terminateService {
	return &terminateService{svc: svc}
}

// terminateAll sends a TERMINATE request to ranks 1..N-1 in ascending order
// and waits for each acknowledgment before moving on. A wrong-opcode reply
// or a nonzero result code is logged and non-fatal: one unresponsive node
// must not prevent terminating the rest. Only transport-level send/receive
// errors fail the whole call.
func (t *terminateService) terminateAll() error {
	packet := make([]byte, wire.MaxPacketSize)

	for rank := 1; rank < t.svc.registry.Count(); rank++ {
		request, err := wire.NewPacket(wire.Header{
			Operation: wire.OpTerminate,
			RankID:    uint16(rank),
		}, nil)
		if err != nil {
			return err
		}

		if err := t.svc.transport.SendTo(rank, request); err != nil {
			return fmt.Errorf("failed to send terminate request to rank %d: %w", rank, err)
		}

		n, err := t.svc.transport.ReceiveAny(packet)
		if err != nil {
			return fmt.Errorf("failed to receive terminate reply for rank %d: %w", rank, err)
		}

		header, err := wire.DecodeHeader(packet[:n])
		if err != nil {
			logger.Errorw("Discarding malformed terminate reply", "rank", rank, "error", err.Error())
			continue
		}

		if header.Operation != wire.OpTerminate {
			logger.Errorw("Invalid terminate reply", "rank", rank, "op", header.Operation.String())
			continue
		}

		if header.Result != wire.ResultSuccess {
			logger.Errorw("Rank failed to terminate", "rank", rank, "result", header.Result)
			continue
		}

		logger.Infow("Rank terminated", "rank", rank)
	}

	return nil
}
