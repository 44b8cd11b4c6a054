package repository

// Scope restricts visitor aggregates either to every farm or to one farm.
// The zero value means all farms.
type Scope struct {
	farmID string
}

// AllFarms applies no farm filter.
func AllFarms() Scope {
	return Scope{}
}

// SingleFarm restricts aggregates to farmID.
func SingleFarm(farmID string) Scope {
	return Scope{farmID: farmID}
}

// IsAll reports whether the scope is unrestricted.
func (s Scope) IsAll() bool {
	return s.farmID == ""
}

// FarmID returns the restricted farm, if any.
func (s Scope) FarmID() (string, bool) {
	return s.farmID, s.farmID != ""
}

// Condition renders the scope as a predicate on column.
func (s Scope) Condition(column string) (string, []interface{}) {
	if s.IsAll() {
		return "TRUE", nil
	}
	return column + " = ?", []interface{}{s.farmID}
}

// String is used for cache keys and log fields.
func (s Scope) String() string {
	if s.IsAll() {
		return "all"
	}
	return "farm:" + s.farmID
}
