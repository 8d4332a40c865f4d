package models

// Page is one window of a listing. HasMore is set when the window came back
// full, which is the signal clients use to offer "load more".
type Page struct {
	Items      []*Product
	Limit      int
	Offset     int
	HasMore    bool
	NextOffset int
}

// NewPage wraps items fetched with limit/offset.
func NewPage(items []*Product, limit, offset int) Page {
	if items == nil {
		items = []*Product{}
	}
	return Page{
		Items:      items,
		Limit:      limit,
		Offset:     offset,
		HasMore:    limit > 0 && len(items) == limit,
		NextOffset: offset + len(items),
	}
}

// Stats are product counts per moderation status.
type Stats struct {
	Total    int
	Pending  int
	Approved int
	Rejected int
}

// Add records n products in status. Unknown statuses count toward Total only.
func (s *Stats) Add(status Status, n int) {
	switch status {
	case StatusPending:
		s.Pending += n
	case StatusApproved:
		s.Approved += n
	case StatusRejected:
		s.Rejected += n
	}
	s.Total += n
}
