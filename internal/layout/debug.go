// File: internal/layout/debug.go
package layout

import (
	"fmt"

	"go.uber.org/zap"
)

// DebugMessage is one entry of the debug channel attached to a layout pass.
type DebugMessage struct {
	Location string
	Message  string
}

func (m DebugMessage) String() string { return m.Location + ": " + m.Message }

func (p *pass) debugf(location, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if p.opts.Debug != nil {
		*p.opts.Debug = append(*p.opts.Debug, DebugMessage{Location: location, Message: msg})
	}
	p.logger.Debug(msg, zap.String("location", location), zap.Uint32("dom", uint32(p.sd.DomID)))
}
