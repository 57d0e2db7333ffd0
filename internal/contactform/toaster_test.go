package contactform

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// idle keep-alive connections of http.DefaultTransport
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

func TestToaster_PushKeepsOrder(t *testing.T) {
	toaster := NewToaster(WithTTL(time.Hour))
	defer toaster.Close()

	first := toaster.Push("one", VariantSuccess)
	second := toaster.Push("two", VariantError)

	active := toaster.Active()
	require.Len(t, active, 2)
	assert.Equal(t, first.ID, active[0].ID)
	assert.Equal(t, second.ID, active[1].ID)
	assert.Equal(t, VariantError, active[1].Variant)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestToaster_ExpiresAfterTTL(t *testing.T) {
	toaster := NewToaster(WithTTL(20 * time.Millisecond))
	defer toaster.Close()

	toaster.Push("bye", VariantSuccess)

	assert.Eventually(t, func() bool {
		return len(toaster.Active()) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestToaster_DefaultTTL(t *testing.T) {
	toaster := NewToaster()
	defer toaster.Close()

	assert.Equal(t, 4500*time.Millisecond, toaster.ttl)
}

func TestToaster_Dismiss(t *testing.T) {
	var dismissed []string
	toaster := NewToaster(WithTTL(time.Hour))
	defer toaster.Close()
	toaster.OnDismiss(func(t Toast) { dismissed = append(dismissed, t.ID) })

	keep := toaster.Push("keep", VariantSuccess)
	drop := toaster.Push("drop", VariantError)

	assert.True(t, toaster.Dismiss(drop.ID))
	assert.False(t, toaster.Dismiss(drop.ID))

	active := toaster.Active()
	require.Len(t, active, 1)
	assert.Equal(t, keep.ID, active[0].ID)
	assert.Equal(t, []string{drop.ID}, dismissed)
}

func TestToaster_OnChange(t *testing.T) {
	var mu sync.Mutex
	var sizes []int
	toaster := NewToaster(WithTTL(time.Hour), WithOnChange(func(toasts []Toast) {
		mu.Lock()
		defer mu.Unlock()
		sizes = append(sizes, len(toasts))
	}))
	defer toaster.Close()

	a := toaster.Push("a", VariantSuccess)
	toaster.Push("b", VariantSuccess)
	toaster.Dismiss(a.ID)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 1}, sizes)
}

func TestToaster_CloseStopsTimers(t *testing.T) {
	toaster := NewToaster(WithTTL(time.Hour))
	toaster.Push("a", VariantSuccess)
	toaster.Push("b", VariantError)

	toaster.Close()

	assert.Empty(t, toaster.Active())
	assert.Empty(t, toaster.Push("late", VariantSuccess).ID)
	assert.Empty(t, toaster.Active())
}
