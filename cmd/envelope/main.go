package main

import (
	"context"
	"fmt"
	"os"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/avcompare/pkg/audio"
	"github.com/xaionaro-go/avcompare/pkg/config"
	_ "github.com/xaionaro-go/avcompare/pkg/decode/implementations/flac"
	_ "github.com/xaionaro-go/avcompare/pkg/decode/implementations/mp3"
	_ "github.com/xaionaro-go/avcompare/pkg/decode/implementations/vorbis"
	_ "github.com/xaionaro-go/avcompare/pkg/decode/implementations/wav"
	"github.com/xaionaro-go/avcompare/pkg/peaks"
	"github.com/xaionaro-go/avcompare/pkg/session"
	"gopkg.in/yaml.v3"
)

type output struct {
	Duration   float64       `yaml:"duration"`
	Step       float64       `yaml:"step"`
	Original   *peaks.Region `yaml:"original_peak,omitempty"`
	Isolated   *peaks.Region `yaml:"isolated_peak,omitempty"`
	Offset     *offset       `yaml:"offset,omitempty"`
	Similarity *float64      `yaml:"similarity,omitempty"`
	Points     []point       `yaml:"points,omitempty"`
}

type offset struct {
	Shift      float64 `yaml:"shift"`
	Confidence float64 `yaml:"confidence"`
}

type point struct {
	Time     float64 `yaml:"t"`
	Original float64 `yaml:"original"`
	Isolated float64 `yaml:"isolated"`
}

func main() {
	loggerLevel := logger.LevelWarning
	pflag.Var(&loggerLevel, "log-level", "Log level")
	configPath := pflag.String("config", "", "path to a YAML config file")
	originalPath := pflag.String("original", "", "the original media file")
	isolatedPath := pflag.String("isolated", "", "the isolated audio track")
	sampleCount := pflag.Int("samples", 0, "the amount of envelope points (overrides the config file)")
	withPoints := pflag.Bool("points", true, "print the envelope points")
	pflag.Parse()

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		assertNoError(err)
	}
	if *sampleCount > 0 {
		cfg.SampleCount = *sampleCount
	}

	s, err := session.New(ctx, session.Config{
		SampleCount:        cfg.SampleCount,
		AnalysisSampleRate: audio.SampleRate(cfg.AnalysisSampleRate),
		OffsetWindow:       cfg.OffsetWindow,
		MaxOffset:          cfg.MaxOffset,
	})
	assertNoError(err)
	defer s.Close(ctx)

	s.Analyze(ctx, session.Sources{
		Original: readFile(*originalPath),
		Isolated: readFile(*isolatedPath),
	})
	analysis, err := s.Analysis(ctx)
	assertNoError(err)

	out := output{
		Duration:   analysis.Peaks.Duration,
		Step:       analysis.Peaks.Step,
		Original:   analysis.Peaks.Original,
		Isolated:   analysis.Peaks.Isolated,
		Similarity: analysis.Similarity,
	}
	if off := analysis.Offset; off != nil {
		out.Offset = &offset{Shift: off.Shift, Confidence: off.Confidence}
	}
	if *withPoints {
		for _, p := range analysis.Peaks.Points {
			out.Points = append(out.Points, point(p))
		}
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	assertNoError(enc.Encode(out))
	assertNoError(enc.Close())
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
	if err != nil {
		panic(err)
	}
}
