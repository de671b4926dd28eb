package common

import (
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/arm32x/bobux-economy/models"
	"github.com/arm32x/bobux-economy/service"
	"github.com/stretchr/testify/assert"
)

var errorIDPattern = regexp.MustCompile("^D-[0-9A-F]{8}$")

func TestNewErrorID(t *testing.T) {
	first := NewErrorID()
	second := NewErrorID()

	assert.Regexp(t, errorIDPattern, first)
	assert.NotEqual(t, first, second)
}

func TestErrorMessage_UserFacing(t *testing.T) {
	err := fmt.Errorf("failed to pay: %w", &service.InsufficientFundsError{Shortfall: models.NewBobux(5, false)})

	assert.Equal(t, "**Error:** Insufficient funds (need an additional 5 bobux).", ErrorMessage(err, nil))
}

func TestErrorMessage_InternalHidesDetails(t *testing.T) {
	message := ErrorMessage(errors.New("connection reset by peer"), nil)

	assert.NotContains(t, message, "connection reset")
	assert.Regexp(t, "^\\*\\*Error:\\*\\* An internal error has occurred\\. If reporting this error, please provide the error ID `D-[0-9A-F]{8}`\\.$", message)
}
