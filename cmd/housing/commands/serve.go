package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ezoic/houseprice/housing"
	"github.com/ezoic/houseprice/internal/printer"
	hpErrors "github.com/ezoic/houseprice/pkg/errors"
	"github.com/ezoic/houseprice/web"
)

func newServeCommand(g *globalOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the prediction form over HTTP",
		Long: `Serve loads the saved artifacts once and serves the price form on GET /,
form submissions on POST /predict, JSON requests on POST /api/predict and a
health check on GET /healthz. Interrupting the process shuts the server down
gracefully.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *g.cfg
			if addr != "" {
				cfg.Server.Addr = addr
			}

			pred, err := housing.LoadPredictor(&cfg)
			if err != nil {
				if hpErrors.Is(err, hpErrors.ErrModelNotTrained) {
					return printer.Error("Model not trained yet", err.Error(), []string{"Run 'housing train' first"})
				}
				return printer.Error("Failed to load artifacts", err.Error(), nil)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, pred, cfg.Server.Addr, web.NewServer(pred, cfg.Server))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}

func serve(ctx context.Context, pred *housing.Predictor, addr string, srv *web.Server) error {
	printer.Success("Serving %s on http://%s\n", pred, displayAddr(addr))
	if err := srv.ListenAndServe(ctx); err != nil {
		return printer.Error("Server stopped", err.Error(), nil)
	}
	printer.Info("Server stopped\n")
	return nil
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
