package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/avcompare/pkg/audio/registry"
)

type fakePlayerPCM struct {
	PingErr error
	Closed  bool
	Played  []byte
}

func (p *fakePlayerPCM) Close() error {
	p.Closed = true
	return nil
}

func (p *fakePlayerPCM) Ping(context.Context) error {
	return p.PingErr
}

func (p *fakePlayerPCM) PlayPCM(
	ctx context.Context,
	sampleRate SampleRate,
	channels Channel,
	format PCMFormat,
	bufferSize time.Duration,
	reader io.Reader,
) (PlayStream, error) {
	var err error
	p.Played, err = io.ReadAll(reader)
	return StreamDummy{}, err
}

type brokenFactory struct {
	player *fakePlayerPCM
}

func (f brokenFactory) NewPlayerPCM() (PlayerPCM, error) {
	return f.player, nil
}

type workingFactory struct {
	player *fakePlayerPCM
}

func (f workingFactory) NewPlayerPCM() (PlayerPCM, error) {
	return f.player, nil
}

func TestPlayerAuto(t *testing.T) {
	ctx := context.Background()

	player := NewPlayerAuto(ctx)
	require.IsType(t, PlayerPCMDummy{}, player.PlayerPCM)

	broken := &fakePlayerPCM{PingErr: fmt.Errorf("no sink")}
	working := &fakePlayerPCM{}
	registry.RegisterPlayerFactory(100, brokenFactory{player: broken})
	registry.RegisterPlayerFactory(10, workingFactory{player: working})

	player = NewPlayerAuto(ctx)
	require.Equal(t, working, player.PlayerPCM)
	assert.True(t, broken.Closed)

	_, err := player.PlayPCM(ctx, 48000, 1, PCMFormatU8, BufferSize, bytes.NewReader([]byte{1, 2, 3}))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, working.Played)
}

func TestPlayerNil(t *testing.T) {
	var player *Player
	_, err := player.PlayPCM(context.Background(), 48000, 1, PCMFormatU8, BufferSize, bytes.NewReader(nil))
	require.Error(t, err)
}

func TestPCM(t *testing.T) {
	pcm := NewPCM(4, []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8}, []float32{1})
	assert.Equal(t, Channel(2), pcm.Channels())
	assert.Equal(t, 8, pcm.Len())
	assert.Equal(t, 2.0, pcm.Duration())
	assert.Equal(t, float32(0), pcm.Sample(1, 3))
	assert.Equal(t, float32(1), pcm.Sample(1, 0))

	var empty *PCM
	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, 0.0, empty.Duration())
	assert.Equal(t, 0.0, NewPCM(0, []float32{1}).Duration())
}

type countingReader struct {
	locker sync.Mutex
	reads  int
	limit  int
}

func (r *countingReader) Read(p []byte) (int, error) {
	r.locker.Lock()
	defer r.locker.Unlock()
	if r.reads >= r.limit {
		return 0, io.EOF
	}
	r.reads++
	return len(p), nil
}

func (r *countingReader) Reads() int {
	r.locker.Lock()
	defer r.locker.Unlock()
	return r.reads
}

func TestPlayerPCMDummyPacesReads(t *testing.T) {
	ctx := context.Background()
	reader := &countingReader{limit: 3}
	stream, err := PlayerPCMDummy{}.PlayPCM(ctx, 8000, 2, PCMFormatS16LE, 5*time.Millisecond, reader)
	require.NoError(t, err)
	require.NoError(t, stream.Drain())
	assert.Equal(t, 3, reader.Reads())
	require.NoError(t, stream.Close())

	_, err = PlayerPCMDummy{}.PlayPCM(ctx, 0, 2, PCMFormatS16LE, BufferSize, reader)
	assert.Error(t, err)
}

func TestPlayerPCMDummyClose(t *testing.T) {
	reader := &countingReader{limit: 1 << 30}
	stream, err := PlayerPCMDummy{}.PlayPCM(context.Background(), 8000, 1, PCMFormatU8, time.Hour, reader)
	require.NoError(t, err)
	require.NoError(t, stream.Close())
	assert.Equal(t, 0, reader.Reads())
}
