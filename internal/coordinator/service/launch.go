package service

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/anthanhphan/go-mpi-coordinator/pkg/wire"
	"github.com/anthanhphan/gosdk/logger"
)

var ErrEmptyCommand = errors.New("no worker command given")

// launchService starts the worker program on every remote rank.
type launchService struct {
	svc *CommunicatorService
}

func newLaunchService(svc *CommunicatorService) *launchService {
	return &launchService{svc: svc}
}

// launchAll builds the worker command line from args (program basename plus
// remaining arguments, space-joined) and sends one EXEC packet per remote
// rank in ascending order. Launches are fire-and-forget: no acknowledgment
// is awaited and prior sends are not rolled back when a later one fails.
func (l *launchService) launchAll(args []string) error {
	if len(args) < 1 {
		return ErrEmptyCommand
	}

	cmdline := filepath.Base(args[0])
	if len(args) > 1 {
		cmdline += " " + strings.Join(args[1:], " ")
	}

	// The command line travels in a single datagram payload; it is never
	// truncated to fit.
	if len(cmdline) > wire.MaxPayloadSize {
		return fmt.Errorf("command line of %d bytes: %w", len(cmdline), wire.ErrPayloadTooLarge)
	}

	logger.Infow("Launching remote workers", "cmdline", cmdline, "ranks", l.svc.registry.Count()-1)

	for rank := 1; rank < l.svc.registry.Count(); rank++ {
		node, err := l.svc.registry.Get(rank)
		if err != nil {
			return fmt.Errorf("rank %d: %w", rank, err)
		}

		packet, err := wire.NewPacket(wire.Header{
			Operation: wire.OpExec,
			RankID:    uint16(rank),
			CoreID:    node.CoreID,
			CoreCount: uint16(l.svc.registry.Count()),
		}, []byte(cmdline))
		if err != nil {
			return err
		}

		if err := l.svc.transport.SendTo(rank, packet); err != nil {
			return fmt.Errorf("failed to launch rank %d: %w", rank, err)
		}

		logger.Infow("Worker launch requested",
			"rank", rank,
			"addr", node.IP.String(),
			"port", node.UDPPort,
			"core", node.CoreID)
	}

	return nil
}
