package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModule struct {
	name     string
	priority int
	err      error
	order    *[]string
}

func (m *fakeModule) Name() string  { return m.name }
func (m *fakeModule) Priority() int { return m.priority }
func (m *fakeModule) Init(ctx *ModuleContext) error {
	*m.order = append(*m.order, m.name)
	return m.err
}

func withRegistry(t *testing.T) {
	t.Helper()
	saved := moduleRegistry
	moduleRegistry = make(map[string]Module)
	t.Cleanup(func() { moduleRegistry = saved })
}

func TestInitModulesByPriority(t *testing.T) {
	withRegistry(t)
	var order []string
	Register(&fakeModule{name: "comment", priority: 10, order: &order})
	Register(&fakeModule{name: "user", priority: 1, order: &order})
	Register(&fakeModule{name: "common", priority: 0, order: &order})
	Register(&fakeModule{name: "audit", priority: 10, order: &order})

	require.NoError(t, InitModules(&ModuleContext{}))
	assert.Equal(t, []string{"common", "user", "audit", "comment"}, order)
}

func TestInitModulesStopsOnError(t *testing.T) {
	withRegistry(t)
	var order []string
	Register(&fakeModule{name: "user", priority: 1, err: errors.New("boom"), order: &order})
	Register(&fakeModule{name: "comment", priority: 10, order: &order})

	err := InitModules(&ModuleContext{})

	assert.ErrorContains(t, err, "init module user")
	assert.Equal(t, []string{"user"}, order)
}

func TestRegisterTwicePanics(t *testing.T) {
	withRegistry(t)
	var order []string
	Register(&fakeModule{name: "user", order: &order})

	assert.Panics(t, func() { Register(&fakeModule{name: "user", order: &order}) })
}
