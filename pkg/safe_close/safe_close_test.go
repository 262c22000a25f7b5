package safe_close

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestSafeClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	sc := NewSafeClose()
	var exited int32

	for i := 0; i < 3; i++ {
		sc.Attach(func(done func(), closeSignal <-chan struct{}) {
			defer done()
			<-closeSignal
			atomic.AddInt32(&exited, 1)
		})
	}

	sc.SendCloseSignal(nil)
	sc.SendCloseSignal(errors.New("ignored"))
	assert.NoError(t, sc.WaitClosed())

	assert.Equal(t, int32(3), atomic.LoadInt32(&exited))
}

func TestSafeClose_KeepsFirstError(t *testing.T) {
	sc := NewSafeClose()
	sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		<-closeSignal
	})

	boom := errors.New("listen failed")
	sc.SendCloseSignal(boom)
	sc.SendCloseSignal(nil)
	assert.ErrorIs(t, sc.WaitClosed(), boom)
}
