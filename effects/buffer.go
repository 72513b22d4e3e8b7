package effects

import (
	"slices"

	"github.com/on-the-ground/effect_ive_records/client"
	"github.com/on-the-ground/effect_ive_records/record"
)

// Buffer holds the writes enqueued since the last commit, in order.
// A Buffer is never modified in place.
type Buffer []client.WriteRequest

// Append returns a new buffer with reqs after the entries of b.
func (b Buffer) Append(reqs ...client.WriteRequest) Buffer {
	return append(slices.Clip(b), reqs...)
}

func (b Buffer) Len() int { return len(b) }

// Step is the buffer and value an evaluation ends with.
type Step[A any] struct {
	Buffer Buffer
	Value  A
}

// runsOf splits items into maximal runs of consecutive items of the same app.
func runsOf[T any](items []T, appOf func(T) record.AppID) [][]T {
	var runs [][]T
	start := 0
	for i := 1; i <= len(items); i++ {
		if i == len(items) || appOf(items[i]) != appOf(items[start]) {
			runs = append(runs, items[start:i])
			start = i
		}
	}
	return runs
}

func createRequest(r record.NewRecord) client.WriteRequest {
	return client.CreateRecord{AppID: r.App(), Record: r.Value().Payload()}
}

func createRequests(rs []record.NewRecord) []client.WriteRequest {
	var reqs []client.WriteRequest
	for _, run := range runsOf(rs, record.NewRecord.App) {
		payloads := make([]record.FieldMap, 0, len(run))
		for _, r := range run {
			payloads = append(payloads, r.Value().Payload())
		}
		reqs = append(reqs, client.CreateRecords{AppID: run[0].App(), Records: payloads})
	}
	return reqs
}

func updatePayload(r record.Record) record.FieldMap {
	return r.Value().Writable().Payload()
}

func updateRequest(r record.Record) client.WriteRequest {
	return client.UpdateRecord{
		AppID:    r.App(),
		ID:       r.ID(),
		Record:   updatePayload(r),
		Revision: r.Revision(),
	}
}

func updateRequests(rs []record.Record) []client.WriteRequest {
	var reqs []client.WriteRequest
	for _, run := range runsOf(rs, record.Record.App) {
		entries := make([]client.UpdateEntry, 0, len(run))
		for _, r := range run {
			entries = append(entries, client.UpdateEntry{
				ID:       r.ID(),
				Record:   updatePayload(r),
				Revision: r.Revision(),
			})
		}
		reqs = append(reqs, client.UpdateRecords{AppID: run[0].App(), Records: entries})
	}
	return reqs
}

func deleteRequests(rs []record.Record) []client.WriteRequest {
	var reqs []client.WriteRequest
	for _, run := range runsOf(rs, record.Record.App) {
		req := client.DeleteRecords{
			AppID:     run[0].App(),
			IDs:       make([]record.RecordID, 0, len(run)),
			Revisions: make([]record.Revision, 0, len(run)),
		}
		for _, r := range run {
			req.IDs = append(req.IDs, r.ID())
			req.Revisions = append(req.Revisions, r.Revision())
		}
		reqs = append(reqs, req)
	}
	return reqs
}

// committed predicts the records after the updates are committed.
func committed(rs []record.Record) []record.Record {
	out := make([]record.Record, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.WithRevision(r.Revision().Next()))
	}
	return out
}
