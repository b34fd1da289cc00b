package audio

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/xaionaro-go/avcompare/pkg/audio/registry"
)

const BufferSize = 100 * time.Millisecond

// Player is the audio output shared by all audible transports of a session.
type Player struct {
	PlayerPCM
}

func NewPlayer(playerPCM PlayerPCM) *Player {
	return &Player{
		PlayerPCM: playerPCM,
	}
}

var (
	preferredFactory       registry.PlayerPCMFactory
	preferredFactoryLocker sync.Mutex
)

func probePlayer(
	ctx context.Context,
	factory registry.PlayerPCMFactory,
) (PlayerPCM, error) {
	player, err := factory.NewPlayerPCM()
	logger.Debugf(ctx, "initializing player %T result is %v", factory, err)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize %T: %w", factory, err)
	}

	err = player.Ping(ctx)
	logger.Debugf(ctx, "pinging PCM player %T result is %v", player, err)
	if err != nil {
		_ = player.Close()
		return nil, fmt.Errorf("unable to ping %T: %w", player, err)
	}
	return player, nil
}

// NewPlayerAuto picks the highest priority output backend that answers a ping.
// If none does, the returned player discards everything it is given, so that
// playback control keeps working without an output device.
func NewPlayerAuto(
	ctx context.Context,
) *Player {
	preferredFactoryLocker.Lock()
	defer preferredFactoryLocker.Unlock()

	if preferredFactory != nil {
		if player, err := probePlayer(ctx, preferredFactory); err == nil {
			return NewPlayer(player)
		}
	}

	var mErr *multierror.Error
	for _, factory := range registry.PlayerFactories() {
		player, err := probePlayer(ctx, factory)
		if err != nil {
			mErr = multierror.Append(mErr, err)
			continue
		}
		preferredFactory = factory
		return NewPlayer(player)
	}

	logger.Warnf(ctx, "was unable to initialize any PCM player, the audio will be discarded: %v", mErr.ErrorOrNil())
	return NewPlayer(PlayerPCMDummy{})
}

func (a *Player) PlayPCM(
	ctx context.Context,
	sampleRate SampleRate,
	channels Channel,
	pcmFormat PCMFormat,
	bufferSize time.Duration,
	pcmReader io.Reader,
) (PlayStream, error) {
	if a == nil || a.PlayerPCM == nil {
		return nil, fmt.Errorf("no PCM player is configured")
	}
	return a.PlayerPCM.PlayPCM(
		ctx,
		sampleRate,
		channels,
		pcmFormat,
		bufferSize,
		pcmReader,
	)
}
