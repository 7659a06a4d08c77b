package di

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitContainer(t *testing.T) {
	container := InitContainer()
	require.NotNil(t, container)
	assert.Same(t, container, GetContainer())
}

func TestRegisterProviders(t *testing.T) {
	container := InitContainer()

	// 注册本身不触发构造，缺少配置和数据库也应成功
	err := RegisterProviders(container)
	require.NoError(t, err)
}

func TestProvideAndInvoke(t *testing.T) {
	InitContainer()

	type marker struct{ value string }
	require.NoError(t, Provide(func() *marker { return &marker{value: "wired"} }))

	var got *marker
	require.NoError(t, Invoke(func(m *marker) { got = m }))
	assert.Equal(t, "wired", got.value)
}
