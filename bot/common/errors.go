package common

import (
	"fmt"
	"strings"

	"github.com/arm32x/bobux-economy/service"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// NewErrorID returns a short id that ties a user-visible error to its log line
func NewErrorID() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "D-" + strings.ToUpper(id[:8])
}

// ErrorMessage renders err for the member who caused it. Internal errors are logged
// under a fresh error id and only the id is shown.
func ErrorMessage(err error, fields log.Fields) string {
	if message, ok := service.UserMessage(err); ok {
		log.WithFields(fields).WithField("error", message).Info("Command failed")
		return "**Error:** " + message
	}

	errorID := NewErrorID()
	log.WithFields(fields).WithFields(log.Fields{
		"errorID": errorID,
		"error":   err,
	}).Error("Internal error in command")

	return fmt.Sprintf("**Error:** An internal error has occurred. If reporting this error, please provide the error ID `%s`.", errorID)
}
