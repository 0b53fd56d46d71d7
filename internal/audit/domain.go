package audit

import "time"

// Entry is a single append-only audit record.
type Entry struct {
	ID           int64
	Action       string
	ActorID      int64
	TargetUserID *int64
	Details      map[string]any
	At           time.Time
}

// TimelineFilters narrows timeline queries. Zero values mean "no filter".
type TimelineFilters struct {
	From     time.Time
	To       time.Time
	ActorID  int64
	Action   string
	Page     int
	PageSize int
}

// PagingInfo describes the returned window.
type PagingInfo struct {
	Page     int
	PageSize int
	HasNext  bool
	PrevPage int
	NextPage int
}
