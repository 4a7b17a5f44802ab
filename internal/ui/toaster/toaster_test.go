package toaster

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew_Hidden(t *testing.T) {
	m := New()
	require.False(t, m.Visible())
	require.Empty(t, m.View())
	require.Empty(t, m.Message())
}

func TestShow(t *testing.T) {
	m, cmd := New().Show("PDF salvo", KindSuccess, time.Second)
	require.NotNil(t, cmd)
	require.True(t, m.Visible())
	require.Equal(t, "PDF salvo", m.Message())
	require.Contains(t, m.View(), "PDF salvo")
}

func TestUpdate_OwnDismissHides(t *testing.T) {
	m, _ := New().Show("primeiro", KindInfo, time.Second)
	m = m.Update(DismissMsg{seq: m.seq})
	require.False(t, m.Visible())
}

func TestUpdate_StaleDismissIgnored(t *testing.T) {
	m, _ := New().Show("primeiro", KindInfo, time.Second)
	stale := DismissMsg{seq: m.seq}
	m, _ = m.Show("segundo", KindError, time.Second)

	m = m.Update(stale)
	require.True(t, m.Visible())
	require.Equal(t, "segundo", m.Message())
}

func TestHide(t *testing.T) {
	m, _ := New().Show("x", KindError, 0)
	m = m.Hide()
	require.False(t, m.Visible())
	require.Empty(t, m.View())
}

func TestOverlay(t *testing.T) {
	bg := strings.Repeat(strings.Repeat(".", 30)+"\n", 9) + strings.Repeat(".", 30)

	require.Equal(t, bg, New().Overlay(bg, 30, 10))

	m, _ := New().Show("salvo", KindSuccess, 0)
	out := m.Overlay(bg, 30, 10)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 10)
	require.Contains(t, lines[7], "salvo")
}
