package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/avcompare/pkg/audio"
	_ "github.com/xaionaro-go/avcompare/pkg/audio/backends/oto"
	_ "github.com/xaionaro-go/avcompare/pkg/audio/backends/pulseaudio"
	"github.com/xaionaro-go/avcompare/pkg/config"
	_ "github.com/xaionaro-go/avcompare/pkg/decode/implementations/flac"
	_ "github.com/xaionaro-go/avcompare/pkg/decode/implementations/mp3"
	_ "github.com/xaionaro-go/avcompare/pkg/decode/implementations/vorbis"
	_ "github.com/xaionaro-go/avcompare/pkg/decode/implementations/wav"
	"github.com/xaionaro-go/avcompare/pkg/metrics"
	"github.com/xaionaro-go/avcompare/pkg/playback"
	"github.com/xaionaro-go/avcompare/pkg/report"
	"github.com/xaionaro-go/avcompare/pkg/session"
	"github.com/xaionaro-go/avcompare/pkg/ui"
	"github.com/xaionaro-go/observability"
)

func main() {
	loggerLevel := logger.LevelUndefined
	pflag.Var(&loggerLevel, "log-level", "Log level (overrides the config file)")
	configPath := pflag.String("config", "", "path to a YAML config file")
	originalPath := pflag.String("original", "", "the original media file (its soundtrack plays as the original video)")
	isolatedPath := pflag.String("isolated", "", "the isolated audio track")
	metricsAddr := pflag.String("metrics-listen-addr", "", "an address to serve Prometheus metrics on (overrides the config file)")
	netPprofAddr := pflag.String("net-pprof-listen-addr", "", "an address to listen for incoming net/pprof connections")
	unlinked := pflag.Bool("unlinked", false, "start with independent transports")
	pflag.Parse()

	if *originalPath == "" && *isolatedPath == "" {
		panic("expected at least one of --original and --isolated")
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		assertNoError(err)
	}
	if loggerLevel == logger.LevelUndefined {
		var err error
		loggerLevel, err = cfg.Level()
		assertNoError(err)
	}
	if *metricsAddr != "" {
		cfg.MetricsListenAddr = *metricsAddr
	}

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if *netPprofAddr != "" {
		observability.Go(ctx, func() { l.Error(http.ListenAndServe(*netPprofAddr, nil)) })
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	m := metrics.NewMetrics(reg)
	if cfg.MetricsListenAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		observability.Go(ctx, func() { l.Error(http.ListenAndServe(cfg.MetricsListenAddr, mux)) })
	}

	player := audio.NewPlayerAuto(ctx)
	defer player.Close()
	logger.Infof(ctx, "using backend %T", player.PlayerPCM)

	s, err := session.New(ctx, session.Config{
		SampleCount:        cfg.SampleCount,
		AnalysisSampleRate: audio.SampleRate(cfg.AnalysisSampleRate),
		OffsetWindow:       cfg.OffsetWindow,
		MaxOffset:          cfg.MaxOffset,
		Analyzer:           report.Dummy{},
		Metrics:            m,
		Playback: playback.Config{
			TickInterval: cfg.TickInterval,
		},
	})
	assertNoError(err)
	defer func() {
		if err := s.Close(ctx); err != nil {
			logger.Errorf(ctx, "unable to close the session: %v", err)
		}
	}()
	if *unlinked {
		s.Controller().SetSyncMode(ctx, playback.SyncModeUnlinked)
	}

	s.Analyze(ctx, session.Sources{
		Original: readFile(*originalPath),
		Isolated: readFile(*isolatedPath),
	})
	logger.Infof(ctx, "decoding...")
	analysis, err := s.Analysis(ctx)
	if err != nil {
		logger.Errorf(ctx, "unable to analyze the tracks: %v", err)
	}
	if err := s.AttachTracks(ctx, player, analysis); err != nil {
		logger.Warnf(ctx, "unable to attach some of the tracks: %v", err)
	}

	assertNoError(ui.Run(ctx, s, cfg.Prompt))
}

func readFile(path string) []byte {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	assertNoError(err)
	if len(data) == 0 {
		assertNoError(fmt.Errorf("the file '%s' is empty", path))
	}
	return data
}

func assertNoError(err error) {
	if err != nil && !errors.Is(err, context.Canceled) {
		panic(err)
	}
}
