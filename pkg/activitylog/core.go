package activitylog

import (
	"go.uber.org/zap/zapcore"
)

// Field keys lifted out of zap fields into typed Entry columns.
const (
	AgentIDKey = "agent_id"
	TaskIDKey  = "task_id"
)

// Core is a zapcore.Core that records entries into a Buffer. Tee it with the
// regular output core so every component logger also feeds the activity log.
type Core struct {
	zapcore.LevelEnabler
	buf    *Buffer
	fields []zapcore.Field
}

func NewCore(buf *Buffer, level zapcore.LevelEnabler) *Core {
	return &Core{LevelEnabler: level, buf: buf}
}

func (c *Core) With(fields []zapcore.Field) zapcore.Core {
	clone := &Core{
		LevelEnabler: c.LevelEnabler,
		buf:          c.buf,
		fields:       make([]zapcore.Field, 0, len(c.fields)+len(fields)),
	}
	clone.fields = append(clone.fields, c.fields...)
	clone.fields = append(clone.fields, fields...)
	return clone
}

func (c *Core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *Core) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range c.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}

	e := Entry{
		Time:      ent.Time,
		Level:     ent.Level,
		Component: ent.LoggerName,
		Message:   ent.Message,
	}
	if v, ok := enc.Fields[AgentIDKey].(string); ok {
		e.AgentID = v
		delete(enc.Fields, AgentIDKey)
	}
	if v, ok := enc.Fields[TaskIDKey].(string); ok {
		e.TaskID = v
		delete(enc.Fields, TaskIDKey)
	}
	if len(enc.Fields) > 0 {
		e.Fields = enc.Fields
	}

	c.buf.Push(e)
	return nil
}

func (c *Core) Sync() error {
	return nil
}
