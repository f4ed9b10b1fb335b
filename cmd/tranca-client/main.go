package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/mfagundes/tranca-client/internal/actions"
	"github.com/mfagundes/tranca-client/internal/bus"
	"github.com/mfagundes/tranca-client/internal/config"
	"github.com/mfagundes/tranca-client/internal/conn"
	"github.com/mfagundes/tranca-client/internal/session"
	"github.com/mfagundes/tranca-client/pkg/types"
)

var (
	flagUser int
	flagName string
)

func init() {
	flag.IntVar(&flagUser, "user", 1, "user id to authenticate as")
	flag.StringVar(&flagName, "name", "guest", "username to authenticate as")
}

// Headless composition root: wires the sync core together and logs what the
// server pushes. The real UI subscribes to the same bus and reads the same
// cache.
func main() {
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	ctx := context.Background()
	b := bus.New(logger)
	cache := session.NewCache()
	mgr := conn.NewManager(ctx, cfg.WSEndpoint, b, cache, logger,
		conn.WithHandshakeTimeout(cfg.HandshakeTimeout))
	defer mgr.Close()
	dispatch := actions.NewDispatcher(mgr)

	b.Subscribe(types.EvConnectionStatusChanged, func(p any) {
		sc := p.(types.StatusChange)
		logger.Info("connection status",
			zap.String("status", string(sc.Status)),
			zap.Int("attempts", sc.Attempts))
	})
	b.Subscribe(types.EvGameStateUpdate, func(p any) {
		snap := p.(*types.GameSnapshot)
		names := lo.Map(snap.Players, func(pl types.Player, _ int) string { return pl.Username })
		logger.Info("snapshot",
			zap.String("game", snap.GameID),
			zap.String("phase", string(snap.Phase)),
			zap.Strings("players", names),
			zap.Int("deck", snap.DeckCount))
	})
	b.Subscribe(types.EvGameListUpdated, func(p any) {
		games := p.([]types.GameListing)
		open := lo.Filter(games, func(g types.GameListing, _ int) bool { return g.Status == "waiting" })
		logger.Info("active games", zap.Int("total", len(games)), zap.Int("open", len(open)))
	})
	b.Subscribe(types.EvActionError, func(p any) {
		logger.Warn("action rejected", zap.String("message", p.(*types.ActionError).Message))
	})
	b.Subscribe(types.EvSessionTerminated, func(p any) {
		st := p.(*types.SessionTerminated)
		logger.Warn("session terminated", zap.String("reason", st.Reason))
	})

	if err := mgr.Connect(ctx, types.Identity{ID: flagUser, Username: flagName}); err != nil {
		logger.Fatal("connect", zap.Error(err))
	}
	if err := dispatch.JoinLobby(flagName); err != nil {
		logger.Warn("join lobby", zap.Error(err))
	}
	if err := dispatch.RequestActiveGames(); err != nil {
		logger.Warn("list games", zap.Error(err))
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")
}
