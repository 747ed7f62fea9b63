package pagination

import "testing"

func TestDefaults(t *testing.T) {
	tests := []struct {
		name         string
		in           PageRequest
		wantPage     int
		wantPageSize int
	}{
		{"empty", PageRequest{}, 1, DefaultPageSize},
		{"kept", PageRequest{Page: 3, PageSize: 10}, 3, 10},
		{"negative", PageRequest{Page: -2, PageSize: -1}, 1, DefaultPageSize},
		{"capped", PageRequest{Page: 1, PageSize: 10000}, 1, MaxPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.in
			req.Defaults()
			if req.Page != tt.wantPage || req.PageSize != tt.wantPageSize {
				t.Errorf("got page %d size %d, want %d/%d", req.Page, req.PageSize, tt.wantPage, tt.wantPageSize)
			}
		})
	}
}

func TestNewPageResponse(t *testing.T) {
	req := PageRequest{Page: 2, PageSize: 10}
	if off := req.Offset(); off != 10 {
		t.Errorf("expected offset 10, got %d", off)
	}

	resp := NewPageResponse([]int{1, 2}, req, 25)
	if resp.TotalPages != 3 || !resp.HasNext {
		t.Errorf("expected 3 pages with a next one, got %+v", resp)
	}

	last := NewPageResponse([]int{1}, PageRequest{Page: 3, PageSize: 10}, 21)
	if last.HasNext {
		t.Error("last page should not report a next page")
	}

	empty := NewPageResponse[int](nil, PageRequest{Page: 1, PageSize: 10}, 0)
	if empty.Data == nil || len(empty.Data) != 0 || empty.TotalPages != 0 {
		t.Errorf("unexpected empty page %+v", empty)
	}
}
