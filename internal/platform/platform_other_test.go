//go:build !windows

package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Norgate-AV/winmon/internal/logger"
	"github.com/Norgate-AV/winmon/internal/monitor"
)

func TestUnsupportedBackend(t *testing.T) {
	t.Parallel()

	b, err := New(logger.NewNoOpLogger())
	require.NoError(t, err)
	defer b.Close()

	assert.False(t, b.CheckPrivilege())
	assert.False(t, b.Exists(1001))

	_, ok := b.Owner(1001)
	assert.False(t, ok)

	_, err = b.Install(1001, monitor.Owner{PID: 1, TID: 2}, func(monitor.RawEvent) {})
	assert.ErrorIs(t, err, ErrUnsupported)

	m := monitor.NewManager(b, logger.NewNoOpLogger(), monitor.Options{})
	defer m.Close()

	err = m.Register(1001, nil)
	assert.ErrorIs(t, err, monitor.NoRights)
	assert.Equal(t, monitor.Rect{}, m.QueryRect(1001))
}
