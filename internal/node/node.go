// Package node provides the reusable contract node that backs artdressupd.
package node

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/Klingon-tech/artdressup/config"
	"github.com/Klingon-tech/artdressup/internal/contract"
	"github.com/Klingon-tech/artdressup/internal/escrow"
	"github.com/Klingon-tech/artdressup/internal/host"
	klog "github.com/Klingon-tech/artdressup/internal/log"
	"github.com/Klingon-tech/artdressup/internal/rpc"
	"github.com/Klingon-tech/artdressup/internal/storage"
	"github.com/Klingon-tech/artdressup/pkg/types"
	"github.com/rs/zerolog"
)

// Node is a fully-initialized contract node.
type Node struct {
	cfg     *config.Config
	genesis *config.ContractGenesis
	logger  zerolog.Logger

	db         *storage.BadgerDB
	host       *host.Host
	dispatcher *escrow.Dispatcher
	rpcServer  *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New opens storage, initializes the contract on first start and binds
// the RPC server. Background loops start with Start.
func New(cfg *config.Config) (*Node, error) {
	// ── 1. Init logger ──────────────────────────────────────────────
	logFile, err := logFilePath(cfg.Log.File, cfg.LogsDir())
	if err != nil {
		return nil, fmt.Errorf("creating logs dir: %w", err)
	}
	if err := klog.Init(cfg.Log.Level, cfg.Log.JSON, logFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	logger := klog.Node

	// ── 2. Contract genesis ─────────────────────────────────────────
	genesis, err := config.LoadContractGenesis(expandHome(cfg.ContractGenesisFile()), cfg.Network)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Str("network", string(cfg.Network)).
		Str("contract", genesis.ContractID).
		Str("owner", genesis.Owner).
		Bool("sequence_numbering", genesis.SequenceNumbering).
		Msg("Starting Art Dress Up node")

	// ── 3. Open storage ─────────────────────────────────────────────
	db, err := storage.NewBadger(cfg.StateDir())
	if err != nil {
		return nil, err
	}
	logger.Info().Str("path", cfg.StateDir()).Msg("Database opened")

	// ── 4. Host + contract init ─────────────────────────────────────
	h, err := host.New(db, host.Config{
		ContractID: types.AccountID(genesis.ContractID),
		AccessKeys: genesis.AccessKeyMap(),
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create host: %w", err)
	}
	created, err := h.Genesis(contract.InitParams{
		Owner:             types.AccountID(genesis.Owner),
		FeeAccount:        types.AccountID(genesis.FeeAccount),
		Metadata:          genesis.Metadata,
		SequenceNumbering: genesis.SequenceNumbering,
	}, genesis.AllocAmounts())
	if err != nil {
		db.Close()
		return nil, err
	}
	if created {
		logger.Info().Int("alloc", len(genesis.Alloc)).Msg("Contract initialized from genesis")
	} else {
		logger.Info().Msg("Contract resumed from database")
	}

	// ── 5. RPC server ───────────────────────────────────────────────
	var rpcServer *rpc.Server
	if cfg.RPC.Enabled {
		rpcAddr := net.JoinHostPort(cfg.RPC.Addr, strconv.Itoa(cfg.RPC.Port))
		rpcServer = rpc.New(rpcAddr, h, cfg.RPC)
		if err := rpcServer.Start(); err != nil {
			db.Close()
			return nil, fmt.Errorf("start RPC at %s: %w", rpcAddr, err)
		}
	} else {
		logger.Warn().Msg("RPC disabled by config")
	}

	ctx, cancel := context.WithCancel(context.Background())

	n := &Node{
		cfg:       cfg,
		genesis:   genesis,
		logger:    logger,
		db:        db,
		host:      h,
		rpcServer: rpcServer,
		ctx:       ctx,
		cancel:    cancel,
	}
	if cfg.Dispatch.Enabled {
		n.dispatcher = escrow.NewDispatcher(h, h.ContractID(), cfg.Dispatch.Interval, klog.Escrow)
	}
	return n, nil
}

// Start launches the transfer dispatcher and storage GC loops.
func (n *Node) Start() error {
	if n.dispatcher != nil {
		n.wg.Add(1)
		go func() {
			defer n.wg.Done()
			n.dispatcher.Run(n.ctx)
		}()
	}
	if n.cfg.Storage.GCInterval > 0 {
		n.wg.Add(1)
		go func() {
			defer n.wg.Done()
			n.db.RunGC(n.ctx, n.cfg.Storage.GCInterval, klog.Storage)
		}()
	}

	n.logger.Info().
		Bool("dispatch", n.dispatcher != nil).
		Str("rpc", n.RPCAddr()).
		Msg("Node started successfully")
	return nil
}

// Stop shuts down the background loops, the RPC server and storage.
func (n *Node) Stop() {
	n.cancel()
	n.wg.Wait()

	if n.rpcServer != nil {
		n.rpcServer.Stop()
	}
	if n.dispatcher != nil {
		// Pay out whatever committed since the last tick.
		if _, err := n.dispatcher.DispatchOnce(); err != nil {
			n.logger.Warn().Err(err).Msg("Final transfer dispatch failed")
		}
	}
	if n.db != nil {
		n.db.Close()
	}

	n.logger.Info().Msg("Goodbye!")
}

// Host returns the contract host.
func (n *Node) Host() *host.Host {
	return n.host
}

// RPCAddr returns the address the RPC server is listening on.
func (n *Node) RPCAddr() string {
	if n.rpcServer == nil {
		return ""
	}
	return n.rpcServer.Addr()
}
