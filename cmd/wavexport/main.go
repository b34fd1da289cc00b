package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/avcompare/pkg/decode"
	_ "github.com/xaionaro-go/avcompare/pkg/decode/implementations/flac"
	_ "github.com/xaionaro-go/avcompare/pkg/decode/implementations/mp3"
	_ "github.com/xaionaro-go/avcompare/pkg/decode/implementations/vorbis"
	_ "github.com/xaionaro-go/avcompare/pkg/decode/implementations/wav"
	"github.com/xaionaro-go/avcompare/pkg/report"
	"github.com/xaionaro-go/avcompare/pkg/transcode"
	"github.com/xaionaro-go/avcompare/pkg/wav"
	"github.com/xaionaro-go/datacounter"
)

func main() {
	loggerLevel := logger.LevelInfo
	pflag.Var(&loggerLevel, "log-level", "Log level")
	outputPath := pflag.String("output", "-", "the output file, '-' is stdout")
	asBase64 := pflag.Bool("base64", false, "write the WAV file as base-64 text")
	asDataURL := pflag.Bool("data-url", false, "write the WAV file as a data URL")
	pflag.Parse()

	if pflag.NArg() != 1 {
		panic("expected exactly one positional argument: path to the media file")
	}

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	input, err := os.ReadFile(pflag.Arg(0))
	assertNoError(err)

	pcm, err := decode.Auto{}.Decode(ctx, input)
	assertNoError(err)
	logger.Infof(ctx, "decoded %d channels at %d Hz, %.3fs", pcm.Channels(), pcm.SampleRate, pcm.Duration())

	var w io.Writer = os.Stdout
	if *outputPath != "-" {
		f, err := os.Create(*outputPath)
		assertNoError(err)
		defer func() {
			assertNoError(f.Close())
		}()
		w = f
	}
	wc := datacounter.NewWriterCounter(w)

	switch {
	case *asDataURL:
		_, err = io.WriteString(wc, transcode.DataURL(report.MIMETypeWAV, wav.Encode(pcm)))
	case *asBase64:
		_, err = io.WriteString(wc, transcode.Base64(wav.Encode(pcm)))
	default:
		_, err = wav.Write(wc, pcm)
	}
	assertNoError(err)
	logger.Infof(ctx, "written: %d bytes", wc.Count())
}

func assertNoError(err error) {
	if err != nil {
		panic(fmt.Errorf("wavexport: %w", err))
	}
}
