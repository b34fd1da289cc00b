package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/avcompare/pkg/audio/types"
)

type factoryLow struct{}

func (factoryLow) NewPlayerPCM() (types.PlayerPCM, error) { return nil, nil }

type factoryHigh struct{}

func (*factoryHigh) NewPlayerPCM() (types.PlayerPCM, error) { return nil, nil }

func TestRegisterPlayerFactory(t *testing.T) {
	RegisterPlayerFactory(1, factoryLow{})
	RegisterPlayerFactory(10, &factoryHigh{})

	factories := PlayerFactories()
	require.Len(t, factories, 2)
	assert.IsType(t, &factoryHigh{}, factories[0])
	assert.IsType(t, factoryLow{}, factories[1])

	assert.Panics(t, func() {
		RegisterPlayerFactory(5, factoryLow{})
	})
	assert.Panics(t, func() {
		RegisterPlayerFactory(5, &factoryHigh{})
	})
}
