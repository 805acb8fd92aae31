package storefront

import (
	"strconv"

	"github.com/talkincode/hexshop/internal/domain"
)

// PageControl is one button of the pager.
type PageControl struct {
	Label    string
	Page     int
	Active   bool
	Disabled bool
}

// Pagination is the rendered pager: previous, one control per page, next.
type Pagination struct {
	Prev  PageControl
	Pages []PageControl
	Next  PageControl
}

// RenderPagination is a pure function of the server page info. Prev and
// Next point at current-1 and current+1 without clamping; callers must
// pass a consistent PageInfo.
func RenderPagination(info domain.PageInfo) Pagination {
	p := Pagination{
		Prev: PageControl{Label: "Previous", Page: info.CurrentPage - 1, Disabled: !info.HasPre},
		Next: PageControl{Label: "Next", Page: info.CurrentPage + 1, Disabled: !info.HasNext},
	}
	if info.TotalPages > 0 {
		p.Pages = make([]PageControl, 0, info.TotalPages)
	}
	for i := 1; i <= info.TotalPages; i++ {
		p.Pages = append(p.Pages, PageControl{
			Label:  strconv.Itoa(i),
			Page:   i,
			Active: i == info.CurrentPage,
		})
	}
	return p
}

// Invoke calls onChange with the control's page unless it is disabled.
func (p Pagination) Invoke(ctrl PageControl, onChange func(page int)) bool {
	if ctrl.Disabled {
		return false
	}
	onChange(ctrl.Page)
	return true
}
