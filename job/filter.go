package job

// Filter restricts List and Count to a subset of records.
//
// A zero Status or empty Type means "no filter on this field". Limit
// and Offset page a result already sorted by CreatedAt descending; an
// Offset at or beyond the total yields an empty result.
type Filter struct {
	Status Status
	Type   Type
	Limit  int
	Offset int
}
