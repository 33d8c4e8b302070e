package job

import (
	"net/url"
	"strconv"
	"strings"
)

// Params are the optional job search parameters. Zero values impose no
// constraint.
type Params struct {
	EmploymentTypes []string
	MinimumPackage  int64
	Search          string
}

// ParamsFromQuery reads employment_type, minimum_package and search from
// query values. Blank employment type labels are dropped and a minimum
// package that is not a positive integer is ignored.
func ParamsFromQuery(q url.Values) Params {
	p := Params{Search: q.Get("search")}
	if raw := q.Get("employment_type"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			p.EmploymentTypes = append(p.EmploymentTypes, t)
		}
	}
	if raw := strings.TrimSpace(q.Get("minimum_package")); raw != "" {
		if min, err := strconv.ParseInt(raw, 10, 64); err == nil && min > 0 {
			p.MinimumPackage = min
		}
	}
	return p
}

type Predicate func(Job) bool

// EmploymentTypeIn matches jobs whose employment type is one of types.
func EmploymentTypeIn(types []string) Predicate {
	set := make(map[string]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return func(j Job) bool {
		_, ok := set[j.EmploymentType]
		return ok
	}
}

// MinimumAnnualSalary matches jobs paying at least min a year. Jobs with no
// parseable package never match.
func MinimumAnnualSalary(min int64) Predicate {
	return func(j Job) bool {
		salary, ok := j.AnnualSalary()
		return ok && salary >= min
	}
}

// TitleContains matches jobs whose title contains term, ignoring case.
func TitleContains(term string) Predicate {
	term = strings.ToLower(term)
	return func(j Job) bool {
		return strings.Contains(strings.ToLower(j.Title), term)
	}
}

// Filter is the conjunction of the predicates of every active parameter.
type Filter struct {
	predicates []Predicate
}

func BuildFilter(p Params) Filter {
	f := Filter{}
	if len(p.EmploymentTypes) > 0 {
		f.predicates = append(f.predicates, EmploymentTypeIn(p.EmploymentTypes))
	}
	if p.MinimumPackage > 0 {
		f.predicates = append(f.predicates, MinimumAnnualSalary(p.MinimumPackage))
	}
	if p.Search != "" {
		f.predicates = append(f.predicates, TitleContains(p.Search))
	}
	return f
}

func (f Filter) Match(j Job) bool {
	for _, pred := range f.predicates {
		if !pred(j) {
			return false
		}
	}
	return true
}

// Apply returns the matching jobs in their input order.
func (f Filter) Apply(jobs []Job) []Job {
	out := make([]Job, 0, len(jobs))
	for _, j := range jobs {
		if f.Match(j) {
			out = append(out, j)
		}
	}
	return out
}
