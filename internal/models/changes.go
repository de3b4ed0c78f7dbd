package models

// ChangeInfo - information about a product whose variants changed.
type ChangeInfo struct {
	Old Product
	New Product
}

// Changes - comparison result between two in-stock snapshots.
type Changes struct {
	Added   []Product
	Removed []Product
	Changed []ChangeInfo
}

// Empty reports whether no difference was found.
func (c Changes) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Changed) == 0
}

// State - the last reported in-stock snapshot stored in the database.
type State struct {
	Fingerprint string
	Products    []Product
}
