package registry

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/xaionaro-go/avcompare/pkg/audio/types"
)

type PlayerPCMFactory interface {
	NewPlayerPCM() (types.PlayerPCM, error)
}

type playerFactoryWithPriority struct {
	Priority int
	PlayerPCMFactory
}

var (
	playerFactoryRegistry       = map[reflect.Type]playerFactoryWithPriority{}
	playerFactoryRegistryLocker sync.Mutex
)

// RegisterPlayerFactory is expected to be called from init() of an output
// backend package; registering the same factory type twice panics.
func RegisterPlayerFactory(
	priority int,
	playerPCMFactory PlayerPCMFactory,
) {
	t := reflect.TypeOf(playerPCMFactory)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	playerFactoryRegistryLocker.Lock()
	defer playerFactoryRegistryLocker.Unlock()
	if _, ok := playerFactoryRegistry[t]; ok {
		panic(fmt.Errorf("there is already registered a factory of PlayerPCM of type %v", t))
	}
	playerFactoryRegistry[t] = playerFactoryWithPriority{
		Priority:         priority,
		PlayerPCMFactory: playerPCMFactory,
	}
}

// PlayerFactories returns the registered factories, highest priority first.
func PlayerFactories() []PlayerPCMFactory {
	playerFactoryRegistryLocker.Lock()
	withPriorities := make([]playerFactoryWithPriority, 0, len(playerFactoryRegistry))
	for _, factory := range playerFactoryRegistry {
		withPriorities = append(withPriorities, factory)
	}
	playerFactoryRegistryLocker.Unlock()

	sort.SliceStable(withPriorities, func(i, j int) bool {
		return withPriorities[i].Priority > withPriorities[j].Priority
	})

	factories := make([]PlayerPCMFactory, 0, len(withPriorities))
	for _, factory := range withPriorities {
		factories = append(factories, factory.PlayerPCMFactory)
	}
	return factories
}
