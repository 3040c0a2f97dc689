package usecase

import "mailsweep/pkg/activitylog"

const defaultActivityLimit = 100

type activityUsecase struct {
	buf *activitylog.Buffer
}

func NewActivityUsecase(buf *activitylog.Buffer) ActivityUsecase {
	return &activityUsecase{buf: buf}
}

// RecentActivity returns the newest matching entries, oldest first.
func (u *activityUsecase) RecentActivity(limit int, filter activitylog.Filter) []activitylog.Entry {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	return u.buf.Recent(limit, filter)
}
