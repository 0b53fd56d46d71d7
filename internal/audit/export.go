package audit

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"
)

// WriteCSV streams timeline entries as CSV.
func WriteCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"occurred_at", "action", "actor_id", "target_user_id", "details"}); err != nil {
		return err
	}
	for _, e := range entries {
		target := ""
		if e.TargetUserID != nil {
			target = strconv.FormatInt(*e.TargetUserID, 10)
		}
		details := ""
		if len(e.Details) > 0 {
			if data, err := json.Marshal(e.Details); err == nil {
				details = string(data)
			}
		}
		record := []string{
			e.At.Format(time.RFC3339),
			e.Action,
			strconv.FormatInt(e.ActorID, 10),
			target,
			details,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
