package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/adaverc/adaforms-demo-api/httpapi"
	"github.com/adaverc/adaforms-demo-api/internal/config"
	"github.com/adaverc/adaforms-demo-api/internal/logging"
	"github.com/adaverc/adaforms-demo-api/ledger"
	"github.com/adaverc/adaforms-demo-api/ledger/grpcledger"
	"github.com/adaverc/adaforms-demo-api/ledger/ledgerconfig"
	"github.com/adaverc/adaforms-demo-api/ledger/ledgerregistry"
	"github.com/adaverc/adaforms-demo-api/verify"

	_ "github.com/adaverc/adaforms-demo-api/ledger/localfs"
	_ "github.com/adaverc/adaforms-demo-api/ledger/memory"
	_ "github.com/adaverc/adaforms-demo-api/ledger/postgres"
	_ "github.com/adaverc/adaforms-demo-api/ledger/sqlite"
)

type options struct {
	configPath      string
	logLevel        string
	logJSON         bool
	backend         string
	ledgerConfig    string
	grpcListen      string
	httpListen      string
	shutdownTimeout time.Duration
	listBackends    bool
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, out, errOut io.Writer) int {
	o := &options{}
	code := 0
	cmd := &cobra.Command{
		Use:           "adaverc-ledgerd",
		Short:         "Serve ledger lookups over gRPC and HTTP",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.Apply(o.configPath, cmd.Flags()); err != nil {
				code = 2
				return err
			}
			if o.listBackends {
				for _, b := range ledgerregistry.List(ledgerregistry.UsageDaemon) {
					if b.Description == "" {
						_, _ = fmt.Fprintf(out, "%s\n", b.Name)
						continue
					}
					_, _ = fmt.Fprintf(out, "%s\t%s\n", b.Name, b.Description)
				}
				return nil
			}
			log, err := logging.New(o.logLevel, o.logJSON)
			if err != nil {
				code = 2
				return err
			}
			defer func() { _ = log.Sync() }()

			l, closeFn, err := openLedger(o)
			if err != nil {
				code = 2
				return err
			}
			if closeFn != nil {
				defer func() { _ = closeFn() }()
			}

			lc := net.ListenConfig{}
			grpcLis, err := lc.Listen(ctx, "tcp", o.grpcListen)
			if err != nil {
				code = 1
				return err
			}
			var httpLis net.Listener
			if o.httpListen != "" {
				if httpLis, err = lc.Listen(ctx, "tcp", o.httpListen); err != nil {
					_ = grpcLis.Close()
					code = 1
					return err
				}
			}
			code = 1
			return serve(ctx, l, grpcLis, httpLis, o.shutdownTimeout, log.Named("ledgerd"))
		},
	}
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		code = 2
		return err
	})

	f := cmd.Flags()
	f.StringVar(&o.configPath, "config", "", "Config file (YAML or JSON); defaults to $"+config.EnvConfig)
	f.StringVar(&o.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	f.BoolVar(&o.logJSON, "log-json", false, "Log as JSON")
	f.StringVar(&o.backend, "backend", "localfs", "Ledger backend name")
	f.StringVar(&o.ledgerConfig, "ledger-config", "", "Ledger backends config file (overrides --backend)")
	f.StringVar(&o.grpcListen, "grpc-listen", "127.0.0.1:7777", "gRPC listen address")
	f.StringVar(&o.httpListen, "http-listen", "127.0.0.1:8080", "HTTP listen address (empty disables HTTP)")
	f.DurationVar(&o.shutdownTimeout, "shutdown-timeout", 10*time.Second, "Grace period for in-flight requests on shutdown")
	f.BoolVar(&o.listBackends, "list-backends", false, "List supported backends and exit")
	ledgerregistry.RegisterFlags(f, ledgerregistry.UsageDaemon)

	if err := cmd.ExecuteContext(ctx); err != nil {
		if code == 0 {
			code = 2
		}
		fmt.Fprintf(errOut, "adaverc-ledgerd: %v\n", err)
		return code
	}
	return 0
}

func openLedger(o *options) (ledger.Ledger, func() error, error) {
	if o.ledgerConfig != "" {
		cfg, err := ledgerconfig.LoadFile(o.ledgerConfig)
		if err != nil {
			return nil, nil, err
		}
		return cfg.Open(ledgerregistry.UsageDaemon, "")
	}
	return ledgerregistry.Open(o.backend, ledgerregistry.UsageDaemon)
}

// serve runs the gRPC service on grpcLis and, when httpLis is non-nil, the
// HTTP API on httpLis until ctx is done. Both listeners are closed on return.
func serve(ctx context.Context, l ledger.Ledger, grpcLis, httpLis net.Listener, grace time.Duration, log *zap.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	gs := grpc.NewServer()
	grpcledger.RegisterLedgerServer(gs, &grpcledger.Server{Ledger: l, Logger: log.Named("grpc")})
	g.Go(func() error {
		log.Info("grpc listening", zap.String("addr", grpcLis.Addr().String()))
		return gs.Serve(grpcLis)
	})
	g.Go(func() error {
		<-gctx.Done()
		stopped := make(chan struct{})
		go func() {
			gs.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-time.After(grace):
			gs.Stop()
		}
		return nil
	})

	if httpLis != nil {
		gin.SetMode(gin.ReleaseMode)
		api := &httpapi.Server{Authority: verify.LedgerAuthority{Ledger: l}, Logger: log.Named("http")}
		hs := &http.Server{Handler: api.Handler(), ReadHeaderTimeout: 10 * time.Second}
		g.Go(func() error {
			log.Info("http listening", zap.String("addr", httpLis.Addr().String()))
			if err := hs.Serve(httpLis); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), grace)
			defer cancel()
			return hs.Shutdown(sctx)
		})
	}

	err := g.Wait()
	log.Info("shut down")
	if errors.Is(err, grpc.ErrServerStopped) {
		return nil
	}
	return err
}
