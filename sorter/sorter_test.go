package sorter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/geodepot/geodepot/sorter"
)

func TestMakeFromStr(t *testing.T) {
	allowed := []string{"name", "size", "created_at"}

	tests := []struct {
		name string
		expr string
		want sorter.SortOpts
	}{
		{
			name: "single term",
			expr: "name:asc",
			want: sorter.Make(sorter.Opt{Field: "name", Dir: sorter.Asc}),
		},
		{
			name: "multiple terms keep precedence order",
			expr: "size:desc,name:asc",
			want: sorter.Make(
				sorter.Opt{Field: "size", Dir: sorter.Desc},
				sorter.Opt{Field: "name", Dir: sorter.Asc},
			),
		},
		{
			name: "field outside the allow-list is dropped",
			expr: "name:asc,storage_path:desc",
			want: sorter.Make(sorter.Opt{Field: "name", Dir: sorter.Asc}),
		},
		{
			name: "unknown direction is dropped",
			expr: "name:upward,created_at:desc",
			want: sorter.Make(sorter.Opt{Field: "created_at", Dir: sorter.Desc}),
		},
		{
			name: "direction is case-insensitive",
			expr: "name:DESC",
			want: sorter.Make(sorter.Opt{Field: "name", Dir: sorter.Desc}),
		},
		{
			name: "surrounding whitespace is tolerated",
			expr: " name : asc , size : desc ",
			want: sorter.Make(
				sorter.Opt{Field: "name", Dir: sorter.Asc},
				sorter.Opt{Field: "size", Dir: sorter.Desc},
			),
		},
		{
			name: "term without a direction is dropped",
			expr: "name,size:desc",
			want: sorter.Make(sorter.Opt{Field: "size", Dir: sorter.Desc}),
		},
		{
			name: "empty expression",
			expr: "",
			want: nil,
		},
		{
			name: "nothing survives the allow-list",
			expr: "id:asc,owner:desc",
			want: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, sorter.MakeFromStr(tc.expr, allowed...))
		})
	}
}

func TestMake(t *testing.T) {
	opts := sorter.Make(
		sorter.Opt{Field: "created_at", Dir: sorter.Desc},
		sorter.Opt{Field: "name", Dir: sorter.Asc},
	)

	assert.Len(t, opts, 2)
	assert.Equal(t, "created_at", opts[0].Field)
	assert.Equal(t, sorter.Desc, opts[0].Dir)
}

func TestOptToSQL(t *testing.T) {
	tests := []struct {
		opt  sorter.Opt
		want string
	}{
		{sorter.Opt{Field: "name", Dir: sorter.Asc}, "name asc"},
		{sorter.Opt{Field: "created_at", Dir: sorter.Desc}, "created_at desc"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.opt.ToSQL())
	}
}
