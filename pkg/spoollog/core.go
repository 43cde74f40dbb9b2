// Package spoollog provides a zap core that ships every log entry to a spool
// listener, one TCP connection per write. Handy for gathering logs from
// processes that die before their output can be read.
package spoollog

import (
	"net"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/keyhole-io/keyhole/pkg/options"
)

// GetSpoolLoggerCore returns a core that sends JSON-encoded log entries to
// the spool at addr ("host:port").
func GetSpoolLoggerCore(addr string) zapcore.Core {
	cfg := zap.NewDevelopmentEncoderConfig()
	enc := zapcore.NewJSONEncoder(cfg)
	writer := spoolWriter{addr: addr, timeout: options.DefaultTimeout}
	ws := zapcore.Lock(zapcore.AddSync(writer))
	passAllMessages := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return true
	})
	return zapcore.NewCore(enc, ws, passAllMessages)
}

type spoolWriter struct {
	addr    string
	timeout time.Duration
}

func (w spoolWriter) Write(p []byte) (int, error) {
	conn, err := net.DialTimeout("tcp", w.addr, w.timeout)
	if err != nil {
		return 0, err
	}
	defer conn.Close()
	conn.SetWriteDeadline(time.Now().Add(w.timeout))
	if _, err := conn.Write(p); err != nil {
		return 0, err
	}
	return len(p), nil
}
