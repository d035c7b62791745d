package tableentry

// OperationContext receives per-row provenance from a RowDecoder.
type OperationContext interface {
	// WithSettingIndices announces which indices the decoder will report.
	WithSettingIndices(rowIndex, tableIndex bool)
	SetRowIndex(rowIndex int64)
	SetTableIndex(tableIndex int)
}

// FormatContext exposes the table counts negotiated for an operation.
type FormatContext interface {
	InputTableCount() (int, bool)
	OutputTableCount() (int, bool)
}

type nopContext struct{}

func (nopContext) WithSettingIndices(bool, bool) {}
func (nopContext) SetRowIndex(int64)             {}
func (nopContext) SetTableIndex(int)             {}
