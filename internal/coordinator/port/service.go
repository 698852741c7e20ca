package port

import "github.com/anthanhphan/go-mpi-coordinator/pkg/wire"

// Communicator is the coordinator-side view of the computation: it launches
// workers, exchanges typed data with individual ranks and coordinates
// shutdown. All operations are synchronous and blocking; request/response
// exchanges block with no timeout unless the transport was configured with
// a receive deadline.
type Communicator interface {
	// Rank returns the local rank. This process is always the master, so
	// the result is always 0.
	Rank() int

	// Size returns the communicator size: the node registry count,
	// master included.
	Size() int

	// LaunchAll sends an EXEC request to every remote rank carrying the
	// worker command line built from args (program basename plus remaining
	// arguments). Fire-and-forget: no per-launch acknowledgment is awaited,
	// and already-issued launches are not rolled back on failure.
	LaunchAll(args []string) error

	// Send transmits count elements of the given datatype from buf to the
	// destination rank in a single datagram. Success means handed to the
	// transport, not received by the peer.
	Send(dest int, datatype wire.Datatype, count int, buf []byte) error

	// Receive pulls count elements of the given datatype from the source
	// rank into buf, collecting as many response datagrams as needed. On
	// failure buf may be partially populated.
	Receive(source int, datatype wire.Datatype, count int, buf []byte) error

	// TerminateAll notifies every remote rank to shut down, waiting for
	// each acknowledgment in turn. Protocol-level rejections are logged and
	// non-fatal; only transport errors fail the call.
	TerminateAll() error
}
