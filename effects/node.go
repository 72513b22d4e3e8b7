package effects

import (
	"context"
	"fmt"

	"github.com/on-the-ground/effect_ive_records/record"
)

var (
	_ node = succeedNode{}
	_ node = failNode{}
	_ node = asyncNode{}
	_ node = andThenNode{}
	_ node = foldNode{}
	_ node = genNode{}
	_ node = getRecordNode{}
	_ node = getRecordsNode{}
	_ node = addRecordNode{}
	_ node = addRecordsNode{}
	_ node = updateRecordNode{}
	_ node = updateRecordsNode{}
	_ node = deleteRecordNode{}
	_ node = deleteRecordsNode{}
	_ node = commitNode{}
)

// node is a sealed interface for the closed set of effect tree nodes.
// Payload values are type-erased; the typed Effect API guarantees their
// dynamic types.
type node interface {
	kind() Kind
}

type succeedNode struct {
	value any
}

type failNode struct {
	err error
}

type asyncNode struct {
	thunk func(context.Context) (any, error)
}

type andThenNode struct {
	self node
	next func(any) node
}

type foldNode struct {
	self      node
	onSuccess func(any) node
	onFailure func(error) node
}

// genNode starts a generator. stop releases its coroutine and is safe to
// call at any point, also after the body returned.
type genNode struct {
	start func() (first node, stop func())
}

type getRecordNode struct {
	params GetRecordParams
}

type getRecordsNode struct {
	params GetRecordsParams
}

type addRecordNode struct {
	record record.NewRecord
}

type addRecordsNode struct {
	records []record.NewRecord
}

type updateRecordNode struct {
	record record.Record
}

type updateRecordsNode struct {
	records []record.Record
}

type deleteRecordNode struct {
	record record.Record
}

type deleteRecordsNode struct {
	records []record.Record
}

type commitNode struct{}

func (succeedNode) kind() Kind       { return KindSucceed }
func (failNode) kind() Kind          { return KindFail }
func (asyncNode) kind() Kind         { return KindAsync }
func (andThenNode) kind() Kind       { return KindAndThen }
func (foldNode) kind() Kind          { return KindFold }
func (genNode) kind() Kind           { return KindGen }
func (getRecordNode) kind() Kind     { return KindGetRecord }
func (getRecordsNode) kind() Kind    { return KindGetRecords }
func (addRecordNode) kind() Kind     { return KindAddRecord }
func (addRecordsNode) kind() Kind    { return KindAddRecords }
func (updateRecordNode) kind() Kind  { return KindUpdateRecord }
func (updateRecordsNode) kind() Kind { return KindUpdateRecords }
func (deleteRecordNode) kind() Kind  { return KindDeleteRecord }
func (deleteRecordsNode) kind() Kind { return KindDeleteRecords }
func (commitNode) kind() Kind        { return KindCommit }

func kindOf(n node) Kind {
	if n == nil {
		panic("effects: evaluating the zero Effect")
	}
	switch n.(type) {
	case succeedNode, failNode, asyncNode, andThenNode, foldNode, genNode,
		getRecordNode, getRecordsNode,
		addRecordNode, addRecordsNode,
		updateRecordNode, updateRecordsNode,
		deleteRecordNode, deleteRecordsNode,
		commitNode:
		return n.kind()
	default:
		panic(fmt.Sprintf("exhaustive match fallback, node type: %T", n))
	}
}
