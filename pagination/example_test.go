package pagination_test

import (
	"fmt"

	"github.com/geodepot/geodepot/pagination"
)

type listFilesRequest struct {
	pagination.Params
	Sort string `query:"sort" json:"sort,omitempty"`
}

type fileView struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

type listFilesResponse struct {
	pagination.Response
	Files []fileView `json:"files"`
}

// Example walks a list request from query parameters to the paged
// response envelope.
func Example() {
	req := listFilesRequest{
		Params: pagination.Params{Page: 2, Size: 10},
		Sort:   "name:asc",
	}
	req.Normalize(pagination.DefaultConfig())

	limit, offset := req.ToLimitOffset()
	fmt.Printf("select ... limit %d offset %d\n", limit, offset)

	resp := listFilesResponse{
		Response: req.NewResponse(25),
		Files: []fileView{
			{Name: "districts.geojson", Size: 52310},
			{Name: "campus.png", Size: 104880},
		},
	}
	fmt.Println(resp.Response.String())

	// Output:
	// select ... limit 10 offset 10
	// page 2 of 3 (total: 25, size: 10)
}

// Example_limitOffset shows that a limit/offset caller still gets
// page-shaped response metadata.
func Example_limitOffset() {
	p := pagination.Params{Limit: 20, Offset: 40}
	p.Normalize(pagination.DefaultConfig())

	fmt.Println(p.String())
	resp := p.NewResponse(90)
	fmt.Println(resp.String())

	// Output:
	// limit=20 offset=40
	// page 3 of 5 (total: 90, size: 20)
}
