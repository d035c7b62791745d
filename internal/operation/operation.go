// Package operation holds the per-job state a worker shares with the codec.
package operation

// Context tracks the provenance of the row currently being processed.
type Context struct {
	trackRowIndex   bool
	trackTableIndex bool
	rowIndex        int64
	tableIndex      int
}

func NewContext() *Context {
	return &Context{rowIndex: -1}
}

func (c *Context) WithSettingIndices(rowIndex, tableIndex bool) {
	c.trackRowIndex = rowIndex
	c.trackTableIndex = tableIndex
}

func (c *Context) SetRowIndex(rowIndex int64) {
	c.rowIndex = rowIndex
}

func (c *Context) SetTableIndex(tableIndex int) {
	c.tableIndex = tableIndex
}

// RowIndex returns the current row index; ok is false when row indices are
// not being tracked.
func (c *Context) RowIndex() (int64, bool) {
	return c.rowIndex, c.trackRowIndex
}

// TableIndex returns the current input table; ok is false when table
// indices are not being tracked.
func (c *Context) TableIndex() (int, bool) {
	return c.tableIndex, c.trackTableIndex
}

// FormatContext carries the table counts negotiated for an operation. A nil
// count means the direction is not configured.
type FormatContext struct {
	Input  *int
	Output *int
}

// InputFormat returns a context with only the input table count set.
func InputFormat(tables int) FormatContext {
	return FormatContext{Input: &tables}
}

// OutputFormat returns a context with only the output table count set.
func OutputFormat(tables int) FormatContext {
	return FormatContext{Output: &tables}
}

func (f FormatContext) InputTableCount() (int, bool) {
	if f.Input == nil {
		return 0, false
	}
	return *f.Input, true
}

func (f FormatContext) OutputTableCount() (int, bool) {
	if f.Output == nil {
		return 0, false
	}
	return *f.Output, true
}
