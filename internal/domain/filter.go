package domain

import "strings"

// StringFilter is a tagged cohort filter: either "match everything" or
// "match this exact value". It replaces the dashboard's legacy magic
// sentinels ("all", "default") so a tier literally named "default" can still
// be filtered on.
type StringFilter struct {
	All   bool
	Value string
}

// FilterAll matches every row.
func FilterAll() StringFilter {
	return StringFilter{All: true}
}

// FilterExact matches rows whose field equals value exactly.
func FilterExact(value string) StringFilter {
	return StringFilter{Value: value}
}

// Matches reports whether v passes the filter.
func (f StringFilter) Matches(v string) bool {
	return f.All || f.Value == v
}

// UserCohort selects app users for a bulk time or moderation operation.
// ActiveOnly narrows to users whose expiry is in the future or unlimited.
type UserCohort struct {
	Username     StringFilter
	Subscription StringFilter
	ActiveOnly   bool
}

// LegacyUserCohort maps the dashboard's wire sentinels onto tagged filters:
// username "all" and subscription "default" mean "no filter".
func LegacyUserCohort(username, subscription string, activeOnly bool) UserCohort {
	cohort := UserCohort{
		Username:     FilterExact(strings.TrimSpace(username)),
		Subscription: FilterExact(strings.TrimSpace(subscription)),
		ActiveOnly:   activeOnly,
	}
	if cohort.Username.Value == "" || cohort.Username.Value == "all" {
		cohort.Username = FilterAll()
	}
	if cohort.Subscription.Value == "" || cohort.Subscription.Value == "default" {
		cohort.Subscription = FilterAll()
	}
	return cohort
}
