package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/promptml/promptml/internal/metrics"
	"github.com/promptml/promptml/internal/server"
	"github.com/promptml/promptml/internal/store"
)

// Serve runs the live preview server until interrupted
func Serve(args []string) error {
	db, args := dbPath(args)
	cfg := server.DefaultConfig()

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--addr":
			if i+1 >= len(args) {
				return fmt.Errorf("--addr requires an address argument")
			}
			cfg.Addr = args[i+1]
			i++
		default:
			return fmt.Errorf("unknown option: %s", args[i])
		}
	}

	st, err := store.Open(db)
	if err != nil {
		return err
	}
	defer st.Close()

	srv, err := server.New(cfg, st, metrics.NewCollector())
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
