package main

import (
	"strings"

	"github.com/sesho96/ytsaurus/internal/job"
	"github.com/sesho96/ytsaurus/internal/operation"
)

const (
	taggedTable   = 0
	untaggedTable = 1

	// summaryTables is the number of output tables summarize writes to.
	summaryTables = 2
)

// Document is the demo input row.
type Document struct {
	ID    int64    `skiff:"id" json:"id"`
	Name  string   `skiff:"name" json:"name"`
	Tags  []string `skiff:"tags" json:"tags,omitempty"`
	Score *float64 `skiff:"score" json:"score,omitempty"`
}

// Summary is the demo output row.
type Summary struct {
	ID       int64  `skiff:"id" json:"id"`
	Name     string `skiff:"name" json:"name"`
	TagCount int32  `skiff:"tag_count" json:"tag_count"`
	// RowIndex is the input row index, -1 when indices are not tracked.
	RowIndex int64 `skiff:"source_row_index" json:"source_row_index"`
}

// summarize routes tagged documents to table 0 and the rest to table 1.
func summarize(in Document, out job.Yield[Summary], ctx *operation.Context) error {
	s := Summary{
		ID:       in.ID,
		Name:     strings.TrimSpace(in.Name),
		TagCount: int32(len(in.Tags)),
		RowIndex: -1,
	}
	if idx, ok := ctx.RowIndex(); ok {
		s.RowIndex = idx
	}
	table := untaggedTable
	if len(in.Tags) > 0 {
		table = taggedTable
	}
	return out.Yield(table, s)
}
