// Command leapdemo runs the leap ability against a floor and a climbable
// table. Prefab edits under prefabs/ are applied to the leaper while running.
package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/milk9111/leap/logging"
	"github.com/milk9111/leap/prefabs"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	physicsDebug := flag.Bool("physics-debug", false, "draw physics shapes")
	watch := flag.Bool("watch", true, "reload prefabs from prefabs/ when they change")
	flag.Parse()

	logger, err := logging.New(*debug)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	reloads := make(chan string, 8)
	if *watch {
		watcher, err := prefabs.NewWatcher("prefabs")
		if err != nil {
			logger.Warn("prefab watcher disabled", zap.Error(err))
		} else {
			defer watcher.Close()
			g.Go(func() error {
				return watcher.Run(ctx, func(name string) {
					select {
					case reloads <- name:
					case <-ctx.Done():
					}
				})
			})
		}
	}

	game, err := NewGame(reloads, *physicsDebug, logger)
	if err != nil {
		logger.Fatal("create game", zap.Error(err))
	}

	ebiten.SetWindowSize(baseWidth*2, baseHeight*2)
	ebiten.SetWindowTitle("leap")
	runErr := ebiten.RunGame(game)
	cancel()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("prefab watcher", zap.Error(err))
	}
	if runErr != nil {
		logger.Fatal("run game", zap.Error(runErr))
	}
}
