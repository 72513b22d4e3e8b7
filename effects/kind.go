package effects

// Kind names a node of the effect tree. It labels logs and metrics.
type Kind string

const (
	KindSucceed       Kind = "succeed"
	KindFail          Kind = "fail"
	KindAsync         Kind = "async"
	KindAndThen       Kind = "and_then"
	KindFold          Kind = "fold"
	KindGen           Kind = "gen"
	KindGetRecord     Kind = "get_record"
	KindGetRecords    Kind = "get_records"
	KindAddRecord     Kind = "add_record"
	KindAddRecords    Kind = "add_records"
	KindUpdateRecord  Kind = "update_record"
	KindUpdateRecords Kind = "update_records"
	KindDeleteRecord  Kind = "delete_record"
	KindDeleteRecords Kind = "delete_records"
	KindCommit        Kind = "commit"
)

// Remote reports whether evaluating a node of kind k contacts the backend.
func (k Kind) Remote() bool {
	switch k {
	case KindGetRecord, KindGetRecords, KindCommit:
		return true
	default:
		return false
	}
}
