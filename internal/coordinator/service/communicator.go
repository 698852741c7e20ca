package service

import (
	"github.com/anthanhphan/go-mpi-coordinator/internal/coordinator/domain"
	"github.com/anthanhphan/go-mpi-coordinator/internal/coordinator/port"
	"github.com/anthanhphan/go-mpi-coordinator/pkg/wire"
)

// CommunicatorService is a facade that composes the coordinator use-case
// services: process launch, point-to-point messaging and termination.
type CommunicatorService struct {
	registry  *domain.Registry
	transport port.Transport

	launcher   *launchService
	messaging  *messagingService
	terminator *terminateService
}

// Ensure CommunicatorService implements port.Communicator.
var _ port.Communicator = (*CommunicatorService)(nil)

// NewCommunicatorService builds the communicator facade and all use-case
// services.
func NewCommunicatorService(registry *domain.Registry, transport port.Transport) *CommunicatorService {
	svc := &CommunicatorService{
		registry:  registry,
		transport: transport,
	}

	svc.launcher = newLaunchService(svc)
	svc.messaging = newMessagingService(svc)
	svc.terminator = newTerminateService(svc)

	return svc
}

// Rank returns the local rank. The coordinator is always rank 0.
func (s *CommunicatorService) Rank() int {
	return domain.MasterRank
}

// Size returns the communicator size, master included.
func (s *CommunicatorService) Size() int {
	return s.registry.Count()
}

// LaunchAll issues an EXEC request to every remote rank.
func (s *CommunicatorService) LaunchAll(args []string) error {
	return s.launcher.launchAll(args)
}

// Send transmits count elements from buf to the destination rank.
func (s *CommunicatorService) Send(dest int, datatype wire.Datatype, count int, buf []byte) error {
	return s.messaging.send(dest, datatype, count, buf)
}

// Receive pulls count elements from the source rank into buf.
func (s *CommunicatorService) Receive(source int, datatype wire.Datatype, count int, buf []byte) error {
	return s.messaging.receive(source, datatype, count, buf)
}

// TerminateAll notifies every remote rank to shut down.
func (s *CommunicatorService) TerminateAll() error {
	return s.terminator.terminateAll()
}
