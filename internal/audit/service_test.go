package audit

import (
	"context"
	"strings"
	"testing"
	"time"
)

type stubRepository struct {
	entries []Entry
	lastQ   Query
}

func (s *stubRepository) TimelineWindow(ctx context.Context, q Query) ([]Entry, error) {
	s.lastQ = q
	from := int(q.OffsetRows)
	if from > len(s.entries) {
		return nil, nil
	}
	to := from + int(q.LimitRows)
	if to > len(s.entries) {
		to = len(s.entries)
	}
	return s.entries[from:to], nil
}

func (s *stubRepository) TimelineAll(ctx context.Context, q Query) ([]Entry, error) {
	s.lastQ = q
	return s.entries, nil
}

func makeEntries(n int) []Entry {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := make([]Entry, n)
	for i := range entries {
		entries[i] = Entry{
			ID:      int64(n - i),
			Action:  "role.update",
			ActorID: 1,
			At:      base.Add(-time.Duration(i) * time.Minute),
		}
	}
	return entries
}

func TestTimelineDefaultPageSize(t *testing.T) {
	repo := &stubRepository{entries: makeEntries(30)}
	svc := NewService(repo)

	result, err := svc.Timeline(context.Background(), TimelineFilters{})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(result.Rows) != 20 {
		t.Fatalf("expected 20 rows, got %d", len(result.Rows))
	}
	if !result.Paging.HasNext {
		t.Fatal("expected a next page")
	}
	if result.Paging.NextPage != 2 {
		t.Fatalf("expected next page 2, got %d", result.Paging.NextPage)
	}
	if repo.lastQ.LimitRows != 21 {
		t.Fatalf("expected limit pageSize+1, got %d", repo.lastQ.LimitRows)
	}
}

func TestTimelineClampsPageSize(t *testing.T) {
	repo := &stubRepository{entries: makeEntries(120)}
	svc := NewService(repo)

	result, err := svc.Timeline(context.Background(), TimelineFilters{PageSize: 500})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(result.Rows) != 50 {
		t.Fatalf("expected clamp to 50 rows, got %d", len(result.Rows))
	}
	if result.Paging.PageSize != 50 {
		t.Fatalf("expected page size 50, got %d", result.Paging.PageSize)
	}
}

func TestTimelineLastPageHasNoNext(t *testing.T) {
	repo := &stubRepository{entries: makeEntries(25)}
	svc := NewService(repo)

	result, err := svc.Timeline(context.Background(), TimelineFilters{Page: 2})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(result.Rows) != 5 {
		t.Fatalf("expected 5 rows on last page, got %d", len(result.Rows))
	}
	if result.Paging.HasNext {
		t.Fatal("last page must not report a next page")
	}
	if result.Paging.PrevPage != 1 {
		t.Fatalf("expected prev page 1, got %d", result.Paging.PrevPage)
	}
}

func TestTimelineNormalizesPage(t *testing.T) {
	repo := &stubRepository{entries: makeEntries(5)}
	svc := NewService(repo)

	result, err := svc.Timeline(context.Background(), TimelineFilters{Page: -3})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if result.Paging.Page != 1 {
		t.Fatalf("expected page 1, got %d", result.Paging.Page)
	}
	if repo.lastQ.OffsetRows != 0 {
		t.Fatalf("expected offset 0, got %d", repo.lastQ.OffsetRows)
	}
}

func TestTimelinePassesFilters(t *testing.T) {
	repo := &stubRepository{}
	svc := NewService(repo)

	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.Timeline(context.Background(), TimelineFilters{
		From:    from,
		ActorID: 7,
		Action:  "auth.login",
	})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if !repo.lastQ.FromAt.Valid || !repo.lastQ.FromAt.Time.Equal(from) {
		t.Fatalf("from filter not forwarded: %+v", repo.lastQ.FromAt)
	}
	if repo.lastQ.ToAt.Valid {
		t.Fatal("zero to-time must stay NULL")
	}
	if !repo.lastQ.ActorID.Valid || repo.lastQ.ActorID.Int64 != 7 {
		t.Fatalf("actor filter not forwarded: %+v", repo.lastQ.ActorID)
	}
	if !repo.lastQ.Action.Valid || repo.lastQ.Action.String != "auth.login" {
		t.Fatalf("action filter not forwarded: %+v", repo.lastQ.Action)
	}
}

func TestExportWritesCSV(t *testing.T) {
	target := int64(42)
	entries := []Entry{
		{
			ID:           2,
			Action:       "user.assign_role",
			ActorID:      1,
			TargetUserID: &target,
			Details:      map[string]any{"role_id": float64(3)},
			At:           time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			ID:      1,
			Action:  "auth.login",
			ActorID: 42,
			At:      time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC),
		},
	}
	svc := NewService(&stubRepository{entries: entries})

	rows, err := svc.Export(context.Background(), TimelineFilters{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	var buf strings.Builder
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "occurred_at,action,actor_id,target_user_id,details" {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "user.assign_role") || !strings.Contains(lines[1], "42") {
		t.Fatalf("unexpected first row: %s", lines[1])
	}
	if !strings.HasSuffix(lines[2], ",,") {
		t.Fatalf("empty target and details must stay blank: %s", lines[2])
	}
}
