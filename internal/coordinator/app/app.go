package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	shellwords "github.com/mattn/go-shellwords"

	"github.com/anthanhphan/go-mpi-coordinator/internal/coordinator/adapter/outbound/udp"
	"github.com/anthanhphan/go-mpi-coordinator/internal/coordinator/config"
	"github.com/anthanhphan/go-mpi-coordinator/internal/coordinator/domain"
	"github.com/anthanhphan/go-mpi-coordinator/internal/coordinator/port"
	"github.com/anthanhphan/go-mpi-coordinator/internal/coordinator/service"
	"github.com/anthanhphan/go-mpi-coordinator/pkg/hostsfile"
	"github.com/anthanhphan/gosdk/logger"
)

type App struct {
	cfg        *config.Config
	registry   *domain.Registry
	transport  *udp.TransportAdapter
	comm       port.Communicator
	workerArgs []string
}

func New(configPath string, workerArgs []string) (*App, error) {
	// 1. Load Config
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Initialize Logger
	logger.InitLogger(&cfg.Logger)

	// 3. Worker command: command-line arguments win over the configured one
	if len(workerArgs) == 0 && cfg.Worker.Command != "" {
		workerArgs, err = shellwords.Parse(cfg.Worker.Command)
		if err != nil {
			return nil, fmt.Errorf("failed to parse worker command: %w", err)
		}
	}
	if len(workerArgs) == 0 {
		return nil, service.ErrEmptyCommand
	}

	// 4. Node Registry: master first, then one node per hosts-file entry
	registry := domain.NewRegistry()
	if err := registry.RegisterMaster(); err != nil {
		return nil, fmt.Errorf("failed to register master node: %w", err)
	}

	entries, err := hostsfile.ParseFile(cfg.Hosts.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse hosts file at %s: %w", cfg.Hosts.Path, err)
	}

	for _, entry := range entries {
		rank, err := registry.Add(domain.Node{
			IP:      entry.IP,
			UDPPort: entry.Port,
			CoreID:  entry.Core,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to register node: %w", err)
		}
		logger.Infow("Node registered",
			"rank", rank,
			"ip", entry.IP.String(),
			"port", entry.Port,
			"core", entry.Core)
	}

	// 5. Transport
	transport, err := udp.NewTransportAdapter(registry, cfg.Transport)
	if err != nil {
		return nil, fmt.Errorf("failed to init transport: %w", err)
	}

	// 6. Communicator
	comm := service.NewCommunicatorService(registry, transport)

	return &App{
		cfg:        cfg,
		registry:   registry,
		transport:  transport,
		comm:       comm,
		workerArgs: workerArgs,
	}, nil
}

// Communicator exposes the coordinator API for embedding programs.
func (a *App) Communicator() port.Communicator {
	return a.comm
}

func (a *App) Run() error {
	logger.Infow("Coordinator starting",
		"rank", a.comm.Rank(),
		"size", a.comm.Size(),
		"endpoint", a.transport.LocalAddr().String())

	if err := a.comm.LaunchAll(a.workerArgs); err != nil {
		return fmt.Errorf("failed to launch workers: %w", err)
	}

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	sig := <-stop
	logger.Infow("Shutdown signal received", "signal", sig.String())

	logger.Info("Terminating remote workers")
	var runErr error
	if err := a.comm.TerminateAll(); err != nil {
		logger.Errorw("Termination failed", "error", err.Error())
		runErr = err
	}

	if err := a.transport.Close(); err != nil {
		logger.Warnw("Transport close failed", "error", err.Error())
	}

	return runErr
}
