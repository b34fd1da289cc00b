package main

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/avcompare/pkg/audio"
	_ "github.com/xaionaro-go/avcompare/pkg/audio/backends/oto"
	_ "github.com/xaionaro-go/avcompare/pkg/audio/backends/pulseaudio"
	"github.com/xaionaro-go/avcompare/pkg/transport/implementations/pcm"
)

func main() {
	loggerLevel := logger.LevelDebug
	pflag.Var(&loggerLevel, "log-level", "Log level")
	freq := pflag.Float64("frequency", 440, "the tone frequency in Hz")
	duration := pflag.Duration("duration", time.Second, "the tone duration")
	pflag.Parse()

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	p := audio.NewPlayerAuto(ctx)
	defer p.Close()
	fmt.Printf("using backend %T\n", p.PlayerPCM)

	const sampleRate = 48000
	samples := make([]float32, int(duration.Seconds()*sampleRate))
	for idx := range samples {
		samples[idx] = float32(0.3 * math.Sin(2*math.Pi*(*freq)*float64(idx)/sampleRate))
	}

	t, err := pcm.New(ctx, p, audio.NewPCM(sampleRate, samples, samples))
	assertNoError(err)
	assertNoError(t.Play())
	for t.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(audio.BufferSize)
	assertNoError(t.Close())
}

func assertNoError(err error) {
	if err != nil {
		panic(err)
	}
}
