package repos

const (
  DefaultPage  = 1
  DefaultLimit = 50
  MaxLimit     = 200
)

// ListParams carries 1-based pagination. Zero values fall back to the
// documented defaults (page 1, limit 50).
type ListParams struct {
  Page  int
  Limit int
}

func (p ListParams) Normalized() ListParams {
  out := p
  if out.Page < 1 {
    out.Page = DefaultPage
  }
  if out.Limit < 1 {
    out.Limit = DefaultLimit
  }
  if out.Limit > MaxLimit {
    out.Limit = MaxLimit
  }
  return out
}

func (p ListParams) Offset() int {
  n := p.Normalized()
  return (n.Page - 1) * n.Limit
}
