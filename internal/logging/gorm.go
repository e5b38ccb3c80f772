package logging

import (
	"fmt"
	"strings"
)

// GormWriter adapts the global logger to gorm's logger.Writer interface.
type GormWriter struct{}

func (GormWriter) Printf(format string, args ...interface{}) {
	msg := strings.TrimSpace(fmt.Sprintf(format, args...))
	l := With("gorm")
	l.Warn().Msg(msg)
}
