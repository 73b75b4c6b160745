package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-textwindow/flags"
	"github.com/rony4d/go-textwindow/pipeline"
	"github.com/rony4d/go-textwindow/utils/source"
)

const metricsNamespace = "textwindow"

// Launch parses args, decodes the configured input and writes the result to
// standard output. Interrupts stop a running decode without an error.
func Launch(args []string) error {
	app := flags.NewApp()
	app.Action = func(ctx *cli.Context) error {
		cfg, err := MakeAllConfigs(ctx)
		if err != nil {
			return err
		}
		log, err := newLogger(cfg.Logging, os.Stderr)
		if err != nil {
			return err
		}

		runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		err = Decode(runCtx, cfg, os.Stdin, os.Stdout, log)
		if errors.Is(err, context.Canceled) {
			log.Info("Decoding interrupted")
			return nil
		}
		if err != nil {
			log.WithError(err).Error("Decoding failed")
		}
		return err
	}
	return app.Run(args)
}

// Decode runs one decoding session for cfg. stdin is read when the input path
// is "-". The metrics server, if enabled, lives as long as the session.
func Decode(ctx context.Context, cfg Config, stdin io.Reader, stdout io.Writer, log logrus.FieldLogger) error {
	decCfg, err := cfg.Decode.DecoderConfig()
	if err != nil {
		return err
	}
	sink, err := pipeline.NewSink(stdout, cfg.Output.Format)
	if err != nil {
		return err
	}
	reg := prometheus.NewRegistry()
	dec, err := pipeline.NewDecoder(decCfg, sink, log, pipeline.NewMetrics(reg, metricsNamespace))
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	runCtx, done := context.WithCancel(gctx)
	defer done()

	src, closeInput, err := openInput(runCtx, cfg.Input, stdin, cfg.Decode.ChunkSize)
	if err != nil {
		return err
	}
	defer closeInput()

	log.WithFields(logrus.Fields{
		"input":    cfg.Input.Path,
		"encoding": decCfg.Format.Name(),
		"follow":   cfg.Input.Follow,
		"output":   cfg.Output.Format,
	}).Info("Decoding started")

	if cfg.Metrics.Enabled {
		addr := net.JoinHostPort(cfg.Metrics.Addr, strconv.Itoa(cfg.Metrics.Port))
		srv := &http.Server{
			Addr:              addr,
			Handler:           metricsHandler(reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			log.WithField("addr", addr).Info("Metrics server started")
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-runCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		defer done()
		if err := dec.Run(runCtx, src); err != nil {
			return err
		}
		log.Info("Decoding finished")
		return nil
	})
	return g.Wait()
}

func metricsHandler(reg *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return mux
}

// openInput returns the chunk source for in together with a function that
// releases the underlying file.
func openInput(ctx context.Context, in InputConfig, stdin io.Reader, chunkSize int) (*source.Source, func(), error) {
	nop := func() {}
	switch {
	case in.Follow:
		src, err := source.Follow(ctx, in.Path, chunkSize)
		return src, nop, err
	case in.Path == "" || in.Path == "-":
		return source.FromReader(ctx, stdin, chunkSize), nop, nil
	}
	f, err := os.Open(in.Path)
	if err != nil {
		return nil, nop, err
	}
	return source.FromReader(ctx, f, chunkSize), func() { f.Close() }, nil
}
