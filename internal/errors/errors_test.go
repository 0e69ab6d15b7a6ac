package errors_test

import (
	"fmt"
	"testing"

	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type customError struct {
	name string
}

func (err customError) Error() string {
	return "custom " + err.name
}

func TestNewKeepsExistingStack(t *testing.T) {
	t.Parallel()

	assert.NoError(t, errors.New(nil))

	err := errors.New("boom")
	require.Error(t, err)
	assert.True(t, errors.ContainsStackTrace(err))
	assert.Same(t, err, errors.New(err))
}

func TestErrorfWrapsCause(t *testing.T) {
	t.Parallel()

	cause := customError{name: "pkg"}
	err := errors.Errorf("resolving: %w", cause)

	var target customError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "pkg", target.name)
	assert.Equal(t, "resolving: custom pkg", err.Error())
	assert.NotEmpty(t, errors.ErrorStack(err))
}

func TestMultiError(t *testing.T) {
	t.Parallel()

	var errs *errors.MultiError

	require.NoError(t, errs.ErrorOrNil())

	errs = errs.Append(fmt.Errorf("first"), fmt.Errorf("second"))
	require.Error(t, errs.ErrorOrNil())
	assert.Equal(t, 2, errs.Len())
	assert.Len(t, errors.UnwrapMultiErrors(errs), 2)
	assert.Contains(t, errs.Error(), "2 errors occurred")
	assert.Contains(t, errs.Error(), "* second")
}

func TestRecover(t *testing.T) {
	t.Parallel()

	var recovered error

	func() {
		defer errors.Recover(func(cause error) {
			recovered = cause
		})

		panic("invariant violated")
	}()

	require.Error(t, recovered)
	assert.Equal(t, "invariant violated", recovered.Error())
}
