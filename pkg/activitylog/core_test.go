package activitylog

import (
	"errors"
	"testing"

	"github.com/nalgeon/be"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestCoreLiftsAgentAndTaskIDs(t *testing.T) {
	buf := NewBuffer(10)
	logger := zap.New(NewCore(buf, zapcore.DebugLevel)).Named("unsubscribe")

	logger.With(zap.String(TaskIDKey, "msg-1")).
		Info("agent finished", zap.String(AgentIDKey, "run-9"), zap.Int("steps", 4))

	got := buf.Recent(0, Filter{})
	be.Equal(t, len(got), 1)
	be.Equal(t, got[0].Component, "unsubscribe")
	be.Equal(t, got[0].Message, "agent finished")
	be.Equal(t, got[0].TaskID, "msg-1")
	be.Equal(t, got[0].AgentID, "run-9")
	be.Equal(t, got[0].Fields["steps"], int64(4))
	_, hasTask := got[0].Fields[TaskIDKey]
	be.True(t, !hasTask)
}

func TestCoreRespectsLevel(t *testing.T) {
	buf := NewBuffer(10)
	logger := zap.New(NewCore(buf, zapcore.WarnLevel))

	logger.Info("quiet")
	logger.Error("loud", zap.Error(errors.New("boom")))

	got := buf.Recent(0, Filter{})
	be.Equal(t, len(got), 1)
	be.Equal(t, got[0].Message, "loud")
	be.Equal(t, got[0].Fields["error"], "boom")
}
