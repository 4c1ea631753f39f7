package tree

// addOptions collects the optional settings for [Tree.Add] and
// [Tree.AddAll]. Fields are presence-tested, never truthiness-tested, so an
// explicit WithExpanded(false) is honored rather than falling back to the
// default.
type addOptions struct {
	expanded    bool
	highlighted bool
	collapsable bool
	position    *int
	prepend     bool
}

func defaultAddOptions() addOptions {
	return addOptions{expanded: true, collapsable: true}
}

// AddOption configures a single insertion.
type AddOption func(*addOptions)

// WithExpanded sets the initial Expanded flag (default true).
func WithExpanded(v bool) AddOption {
	return func(o *addOptions) { o.expanded = v }
}

// WithHighlighted sets the initial Highlighted flag (default false).
func WithHighlighted(v bool) AddOption {
	return func(o *addOptions) { o.highlighted = v }
}

// WithCollapsable sets the initial Collapsable flag (default true).
func WithCollapsable(v bool) AddOption {
	return func(o *addOptions) { o.collapsable = v }
}

// AtPosition inserts the new node before the sibling currently at index i.
// Out-of-range positions fall back to appending.
func AtPosition(i int) AddOption {
	return func(o *addOptions) { o.position = &i }
}

// Prepend makes [Tree.AddAll] place the inserted items before any existing
// children, keeping the input order among themselves. It has no effect on
// single Add calls.
func Prepend() AddOption {
	return func(o *addOptions) { o.prepend = true }
}
