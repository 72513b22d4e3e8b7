package effects_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/on-the-ground/effect_ive_records/client"
	"github.com/on-the-ground/effect_ive_records/effects"
	"github.com/on-the-ground/effect_ive_records/record"
	"github.com/on-the-ground/effect_ive_records/validation"
)

func TestInterpret_BuffersWritesUntilCommit(t *testing.T) {
	mc := newMockClient(t)
	r := record.RecordOf("1", "5", text("a"), 3)

	e := effects.Then(
		effects.AddRecord(effects.AddRecordParams{Record: record.NewRecordOf("1", text("new"))}),
		effects.Then(
			effects.UpdateRecord(effects.UpdateRecordParams{Record: r.Update(setText("b"))}),
			effects.DeleteRecord(effects.DeleteRecordParams{Record: r}),
		),
	)

	res := effects.Interpret(context.Background(), effects.NewInterpreter(mc), e, nil)
	step, ok := res.GetRight()
	require.True(t, ok)
	assert.Equal(t, effects.Buffer{
		client.CreateRecord{AppID: "1", Record: record.FieldMap{"text": {Value: "new"}}},
		client.UpdateRecord{AppID: "1", ID: "5", Record: record.FieldMap{"text": {Value: "b"}}, Revision: 3},
		client.DeleteRecords{AppID: "1", IDs: []record.RecordID{"5"}, Revisions: []record.Revision{3}},
	}, step.Buffer)
}

func TestInterpret_StartsFromGivenBuffer(t *testing.T) {
	mc := newMockClient(t)
	initial := effects.Buffer{client.CreateRecord{AppID: "1", Record: record.FieldMap{}}}

	e := effects.AddRecord(effects.AddRecordParams{Record: record.NewRecordOf("2", text("x"))})
	step, ok := effects.Interpret(context.Background(), effects.NewInterpreter(mc), e, initial).GetRight()
	require.True(t, ok)
	assert.Equal(t, 2, step.Buffer.Len())
	assert.Equal(t, 1, initial.Len())
}

func TestCommit_SendsOneAtomicRequestInOrder(t *testing.T) {
	mc := newMockClient(t)
	bulks := captureBulk(mc, 1)

	var writes []effects.Effect[struct{}]
	var want []client.WriteRequest
	for i := range 5 {
		v := string(rune('a' + i))
		writes = append(writes, effects.AddRecord(effects.AddRecordParams{
			Record: record.NewRecordOf("1", text(v)),
		}))
		want = append(want, client.CreateRecord{AppID: "1", Record: record.FieldMap{"text": {Value: v}}})
	}
	e := effects.Then(effects.Sequence(writes...), effects.Commit())

	_, err := effects.Run(context.Background(), mc, e)
	require.NoError(t, err)
	require.Len(t, *bulks, 1)
	if diff := cmp.Diff(want, (*bulks)[0]); diff != "" {
		t.Fatalf("bulk request mismatch (-want +got):\n%s", diff)
	}
}

func TestCommit_EmptyBufferMakesNoCall(t *testing.T) {
	mc := newMockClient(t)
	v, err := effects.Run(context.Background(), mc, effects.Commit())
	require.NoError(t, err)
	assert.Equal(t, struct{}{}, v)
}

func TestCommit_ResetsBuffer(t *testing.T) {
	mc := newMockClient(t)
	bulks := captureBulk(mc, 2)

	add := func(v string) effects.Effect[struct{}] {
		return effects.AddRecord(effects.AddRecordParams{Record: record.NewRecordOf("1", text(v))})
	}
	e := effects.Sequence(add("a"), effects.Commit(), add("b"), effects.Commit(), effects.Commit())

	step, ok := effects.Interpret(context.Background(), effects.NewInterpreter(mc), e, nil).GetRight()
	require.True(t, ok)
	assert.Zero(t, step.Buffer.Len())
	require.Len(t, *bulks, 2)
	assert.Len(t, (*bulks)[0], 1)
	assert.Len(t, (*bulks)[1], 1)
}

func TestCommit_RemoteFailure(t *testing.T) {
	mc := newMockClient(t)
	remote := record.Error{ID: "e1", Code: "GAIA_CO02", Message: "revision conflict"}
	mc.EXPECT().BulkRequest(gomock.Any(), gomock.Any()).Return(client.Failed[struct{}](remote))

	r := record.RecordOf("1", "5", text("a"), 1)
	e := effects.Then(effects.DeleteRecord(effects.DeleteRecordParams{Record: r}), effects.Commit())

	_, err := effects.Run(context.Background(), mc, e)
	var got record.Error
	require.ErrorAs(t, err, &got)
	assert.Equal(t, remote, got)
}

func TestRollback_OnFail(t *testing.T) {
	mc := newMockClient(t)
	e := effects.Then(
		effects.AddRecord(effects.AddRecordParams{Record: record.NewRecordOf("1", text("a"))}),
		effects.Then(effects.Fail[struct{}](errBoom), effects.Commit()),
	)
	_, err := effects.Run(context.Background(), mc, e)
	assert.Same(t, errBoom, err)
}

func TestRollback_OnRejectedAsync(t *testing.T) {
	mc := newMockClient(t)
	calls := 0
	e := effects.Then(
		effects.AddRecord(effects.AddRecordParams{Record: record.NewRecordOf("1", text("a"))}),
		effects.Then(failingThunk(&calls, errBoom), effects.Commit()),
	)
	_, err := effects.Run(context.Background(), mc, e)
	assert.Same(t, errBoom, err)
	assert.Equal(t, 1, calls)
}

func TestFold_OnFailureKeepsBufferFromBefore(t *testing.T) {
	mc := newMockClient(t)
	bulks := captureBulk(mc, 1)

	add := func(v string) effects.Effect[struct{}] {
		return effects.AddRecord(effects.AddRecordParams{Record: record.NewRecordOf("1", text(v))})
	}
	attempt := effects.Then(add("dropped"), effects.Fail[struct{}](errBoom))
	e := effects.Then(add("kept"), effects.Then(attempt.Catch(func(error) effects.Effect[struct{}] {
		return effects.Unit()
	}), effects.Commit()))

	_, err := effects.Run(context.Background(), mc, e)
	require.NoError(t, err)
	require.Len(t, *bulks, 1)
	assert.Equal(t, []client.WriteRequest{
		client.CreateRecord{AppID: "1", Record: record.FieldMap{"text": {Value: "kept"}}},
	}, (*bulks)[0])
}

func TestUpdateRecord_IncrementsRevision(t *testing.T) {
	for _, rev := range []record.Revision{0, 1, 41} {
		r := record.RecordOf("1", "5", text("a"), rev)
		e := effects.UpdateRecord(effects.UpdateRecordParams{Record: r.Update(setText("b"))})

		got, err := effects.Run(context.Background(), newMockClient(t), e)
		require.NoError(t, err)
		assert.Equal(t, rev+1, got.Revision())
		assert.Equal(t, r.ID(), got.ID())
		assert.Equal(t, r.App(), got.App())
		assert.Equal(t, setText("b")(r.Value()), got.Value())
	}
}

func TestUpdateRecord_WithoutRevision(t *testing.T) {
	r := record.RecordOf("1", "5", text("a"), record.NoRevision)
	got, err := effects.Run(context.Background(), newMockClient(t),
		effects.UpdateRecord(effects.UpdateRecordParams{Record: r}))
	require.NoError(t, err)
	assert.Equal(t, record.NoRevision, got.Revision())
}

func TestUpdateRecord_StripsReadOnlyFields(t *testing.T) {
	mc := newMockClient(t)
	bulks := captureBulk(mc, 1)

	value := text("a")
	value["Created_datetime"] = record.Field{Type: record.TypeCreatedTime, Value: "2024-01-01T00:00:00Z"}
	value["Record_number"] = record.Field{Type: record.TypeRecordNumber, Value: "5"}
	value["count"] = record.Field{Type: "NUMBER", Value: "3"}
	r := record.RecordOf("1", "5", value, 2)

	e := effects.AndThen(effects.UpdateRecord(effects.UpdateRecordParams{Record: r}),
		func(updated record.Record) effects.Effect[record.Record] {
			return effects.As(effects.Commit(), updated)
		})
	updated, err := effects.Run(context.Background(), mc, e)
	require.NoError(t, err)

	assert.Equal(t, []client.WriteRequest{client.UpdateRecord{
		AppID: "1",
		ID:    "5",
		Record: record.FieldMap{
			"text":  {Value: "a"},
			"count": {Value: "3"},
		},
		Revision: 2,
	}}, (*bulks)[0])
	assert.Contains(t, updated.Value(), "Created_datetime")
}

func TestWrites_AcceptEmptyFieldValues(t *testing.T) {
	mc := newMockClient(t)
	bulks := captureBulk(mc, 1)

	value := text("a")
	value["date"] = record.Field{Type: "DATE", Value: nil}
	r := record.RecordOf("1", "5", value, 1)

	e := effects.Sequence(
		effects.AddRecord(effects.AddRecordParams{Record: record.NewRecordOf("1", record.FieldMap{"n": {Value: nil}})}),
		effects.As(effects.UpdateRecord(effects.UpdateRecordParams{Record: r.Update(func(v record.FieldMap) record.FieldMap {
			return v.WithValue("text", nil)
		})}), struct{}{}),
		effects.As(effects.UpdateRecords(effects.UpdateRecordsParams{Records: []record.Record{r}}), struct{}{}),
		effects.Commit(),
	)
	_, err := effects.Run(context.Background(), mc, e)
	require.NoError(t, err)

	require.Len(t, *bulks, 1)
	assert.Equal(t, []client.WriteRequest{
		client.CreateRecord{AppID: "1", Record: record.FieldMap{"n": {Value: nil}}},
		client.UpdateRecord{AppID: "1", ID: "5", Record: record.FieldMap{
			"text": {Value: nil},
			"date": {Value: nil},
		}, Revision: 1},
		client.UpdateRecords{AppID: "1", Records: []client.UpdateEntry{
			{ID: "5", Record: record.FieldMap{"text": {Value: "a"}, "date": {Value: nil}}, Revision: 1},
		}},
	}, (*bulks)[0])
}

func TestUpdateRecords_GroupsConsecutiveApps(t *testing.T) {
	mc := newMockClient(t)
	bulks := captureBulk(mc, 1)

	a1 := record.RecordOf("1", "1", text("a"), 1)
	a2 := record.RecordOf("1", "2", text("b"), 4)
	b1 := record.RecordOf("2", "1", text("c"), record.NoRevision)

	var projected []record.Record
	e := effects.AndThen(
		effects.UpdateRecords(effects.UpdateRecordsParams{Records: []record.Record{a1, a2, b1}}),
		func(rs []record.Record) effects.Effect[struct{}] {
			projected = rs
			return effects.Commit()
		},
	)
	_, err := effects.Run(context.Background(), mc, e)
	require.NoError(t, err)

	assert.Equal(t, []client.WriteRequest{
		client.UpdateRecords{AppID: "1", Records: []client.UpdateEntry{
			{ID: "1", Record: record.FieldMap{"text": {Value: "a"}}, Revision: 1},
			{ID: "2", Record: record.FieldMap{"text": {Value: "b"}}, Revision: 4},
		}},
		client.UpdateRecords{AppID: "2", Records: []client.UpdateEntry{
			{ID: "1", Record: record.FieldMap{"text": {Value: "c"}}, Revision: record.NoRevision},
		}},
	}, (*bulks)[0])

	require.Len(t, projected, 3)
	assert.Equal(t, record.Revision(2), projected[0].Revision())
	assert.Equal(t, record.Revision(5), projected[1].Revision())
	assert.Equal(t, record.NoRevision, projected[2].Revision())
}

func TestAddRecords_And_DeleteRecords(t *testing.T) {
	mc := newMockClient(t)
	bulks := captureBulk(mc, 1)

	r1 := record.RecordOf("3", "7", text("x"), 2)
	r2 := record.RecordOf("3", "8", text("y"), record.NoRevision)
	e := effects.Sequence(
		effects.AddRecords(effects.AddRecordsParams{Records: []record.NewRecord{
			record.NewRecordOf("3", text("p")),
			record.NewRecordOf("3", text("q")),
		}}),
		effects.DeleteRecords(effects.DeleteRecordsParams{Records: []record.Record{r1, r2}}),
		effects.Commit(),
	)
	_, err := effects.Run(context.Background(), mc, e)
	require.NoError(t, err)

	assert.Equal(t, []client.WriteRequest{
		client.CreateRecords{AppID: "3", Records: []record.FieldMap{
			{"text": {Value: "p"}},
			{"text": {Value: "q"}},
		}},
		client.DeleteRecords{
			AppID:     "3",
			IDs:       []record.RecordID{"7", "8"},
			Revisions: []record.Revision{2, record.NoRevision},
		},
	}, (*bulks)[0])
}

func TestPluralWrites_PanicOnEmptyList(t *testing.T) {
	for name, build := range map[string]func(){
		"add":    func() { effects.AddRecords(effects.AddRecordsParams{}) },
		"update": func() { effects.UpdateRecords(effects.UpdateRecordsParams{Records: []record.Record{}}) },
		"delete": func() { effects.DeleteRecords(effects.DeleteRecordsParams{}) },
	} {
		t.Run(name, func(t *testing.T) {
			v := panicValue(build)
			err, ok := v.(error)
			require.True(t, ok, "panic value %v", v)
			assert.ErrorIs(t, err, effects.ErrNoRecords)
		})
	}
}

func TestGetRecord_ThenUpdateThenCommit(t *testing.T) {
	mc := newMockClient(t)
	mc.EXPECT().
		GetRecord(gomock.Any(), client.GetRecordParams{App: "1", ID: "5"}).
		Return(client.Ok(client.GetRecordResult{Record: rowOf("5", "1", record.FieldMap{"text": {Value: "a"}})}))
	mc.EXPECT().
		BulkRequest(gomock.Any(), client.BulkRequestParams{Requests: []client.WriteRequest{
			client.UpdateRecord{AppID: "1", ID: "5", Record: record.FieldMap{"text": {Value: "b"}}, Revision: 1},
		}}).
		Return(client.Ok(struct{}{}))

	e := effects.Then(
		effects.AndThen(
			effects.GetRecord(effects.GetRecordParams{App: record.IntID(1), ID: record.IntID(5)}),
			func(r record.Record) effects.Effect[record.Record] {
				return effects.UpdateRecord(effects.UpdateRecordParams{Record: r.Update(setText("b"))})
			},
		),
		effects.Commit(),
	)
	v, err := effects.Run(context.Background(), mc, e)
	require.NoError(t, err)
	assert.Equal(t, struct{}{}, v)
}

func TestGetRecord_RemoteFailure(t *testing.T) {
	mc := newMockClient(t)
	remote := record.Error{ID: "e", Code: "GAIA_RE01", Message: "not found"}
	mc.EXPECT().GetRecord(gomock.Any(), gomock.Any()).Return(client.Failed[client.GetRecordResult](remote))

	_, err := effects.Run(context.Background(), mc, effects.GetRecord(effects.GetRecordParams{App: "1", ID: "9"}))
	assert.Equal(t, error(remote), err)
}

func TestGetRecord_MalformedRow(t *testing.T) {
	mc := newMockClient(t)
	mc.EXPECT().GetRecord(gomock.Any(), gomock.Any()).
		Return(client.Ok(client.GetRecordResult{Record: text("no identity")}))

	_, err := effects.Run(context.Background(), mc, effects.GetRecord(effects.GetRecordParams{App: "1", ID: "9"}))
	assert.ErrorIs(t, err, effects.ErrMalformedRow)
}

func TestGetRecords_RequestsIdentityFields(t *testing.T) {
	mc := newMockClient(t)
	mc.EXPECT().
		GetRecords(gomock.Any(), client.GetRecordsParams{
			App:    "1",
			Fields: []string{"text", record.FieldID, record.FieldRevision},
			Query:  `text = "a"`,
		}).
		Return(client.Ok(client.GetRecordsResult{Records: []record.FieldMap{
			rowOf("1", "3", record.FieldMap{"text": {Value: "a"}}),
			rowOf("2", "4", record.FieldMap{"text": {Value: "a"}}),
		}}))

	rs, err := effects.Run(context.Background(), mc, effects.GetRecords(effects.GetRecordsParams{
		App:    "1",
		Fields: []string{"text"},
		Query:  `text = "a"`,
	}))
	require.NoError(t, err)
	require.Len(t, rs, 2)
	assert.Equal(t, record.RecordOf("1", "1", record.FieldMap{"text": {Value: "a"}}, 3), rs[0])
	assert.Equal(t, record.RecordID("2"), rs[1].ID())
	assert.Equal(t, record.Revision(4), rs[1].Revision())
}

func TestGetRecords_AllFieldsAndNoDuplicates(t *testing.T) {
	mc := newMockClient(t)
	gomock.InOrder(
		mc.EXPECT().
			GetRecords(gomock.Any(), client.GetRecordsParams{App: "1"}).
			Return(client.Ok(client.GetRecordsResult{})),
		mc.EXPECT().
			GetRecords(gomock.Any(), client.GetRecordsParams{App: "1", Fields: []string{record.FieldID, "text", record.FieldRevision}}).
			Return(client.Ok(client.GetRecordsResult{})),
	)

	e := effects.Then(
		effects.GetRecords(effects.GetRecordsParams{App: "1"}),
		effects.GetRecords(effects.GetRecordsParams{App: "1", Fields: []string{record.FieldID, "text"}}),
	)
	rs, err := effects.Run(context.Background(), mc, e)
	require.NoError(t, err)
	assert.Empty(t, rs)
}

func TestConstructors_PanicOnInvalidArguments(t *testing.T) {
	for name, build := range map[string]func(){
		"get app":      func() { effects.GetRecord(effects.GetRecordParams{App: "x", ID: "1"}) },
		"get id":       func() { effects.GetRecord(effects.GetRecordParams{App: "1", ID: "-1"}) },
		"get fields":   func() { effects.GetRecords(effects.GetRecordsParams{App: "1", Fields: []string{""}}) },
		"add field":    func() { effects.AddRecord(effects.AddRecordParams{Record: record.NewRecordOf("1", record.FieldMap{"": {}})}) },
		"update rev":   func() { effects.UpdateRecord(effects.UpdateRecordParams{Record: record.RecordOf("1", "1", nil, -2)}) },
		"delete id":    func() { effects.DeleteRecord(effects.DeleteRecordParams{Record: record.RecordOf("1", "a", nil, 1)}) },
		"update batch": func() { effects.UpdateRecords(effects.UpdateRecordsParams{Records: []record.Record{record.RecordOf("z", "1", nil, 1)}}) },
	} {
		t.Run(name, func(t *testing.T) {
			v := panicValue(build)
			err, ok := v.(error)
			require.True(t, ok, "panic value %v", v)
			assert.ErrorIs(t, err, validation.ErrInvalid)
		})
	}
}

func TestBuffer_AppendDoesNotAlias(t *testing.T) {
	base := make(effects.Buffer, 1, 4)
	base[0] = client.CreateRecord{AppID: "1"}

	left := base.Append(client.CreateRecord{AppID: "2"})
	right := base.Append(client.CreateRecord{AppID: "3"})

	assert.Equal(t, record.AppID("2"), left[1].App())
	assert.Equal(t, record.AppID("3"), right[1].App())
	assert.Equal(t, 1, base.Len())
}
