package adapters

// BaseAdapter holds what every source shares: its display name and whether
// it has already been granted access.
type BaseAdapter struct {
	name          string
	authenticated bool
}

func NewBaseAdapter(name string) BaseAdapter {
	return BaseAdapter{name: name}
}

// SetAuthenticated records that the source may now be used.
func (b *BaseAdapter) SetAuthenticated(ok bool) {
	b.authenticated = ok
}

func (b *BaseAdapter) IsAuthenticated() bool {
	return b.authenticated
}

func (b *BaseAdapter) Name() string {
	return b.name
}
