package logger

import (
	"testing"

	"mailsweep/pkg/activitylog"

	"github.com/nalgeon/be"
)

func TestNewTeesIntoActivityBuffer(t *testing.T) {
	buf := activitylog.NewBuffer(8)
	l, err := New("info", "json", buf)
	be.Err(t, err, nil)

	l.Named("sync").Info("account synced")
	l.Debug("dropped below level")

	got := buf.Recent(0, activitylog.Filter{})
	be.Equal(t, len(got), 1)
	be.Equal(t, got[0].Component, "sync")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("loud", "json", nil)
	be.Err(t, err)
}
