package realtime

import (
	"testing"

	"github.com/glimmer-social/backend/internal/common/constants"
	"github.com/glimmer-social/backend/internal/common/logger"
)

func TestNewClientUsesConfiguredSendBuffer(t *testing.T) {
	log, _ := logger.New("", "test", "error")

	cfg := DefaultConfig()
	cfg.SendBufSize = 4
	c := NewClient(nil, nil, "conn-1", cfg, log)

	if got := cap(c.send); got != 4 {
		t.Errorf("expected send buffer capacity 4, got %d", got)
	}
	if c.cfg.PongWait != constants.DefaultWebSocketPongWait {
		t.Errorf("expected default pong wait carried through, got %v", c.cfg.PongWait)
	}
}
