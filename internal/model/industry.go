package model

// Industry is a row of the `industries` table.
type Industry struct {
	Code     string `json:"code"`
	Industry string `json:"industry"`
}

// Membership is one row of the industries ⟕ companies join.  Company is
// nil for an industry without associated companies.
type Membership struct {
	Industry string
	Company  *string
}

// IndustryCompanies is an industry with the names of its companies.
// Companies is omitted from JSON when the industry has none.
type IndustryCompanies struct {
	Industry  string   `json:"industry"`
	Companies []string `json:"companies,omitempty"`
}

// GroupIndustries folds join rows into one entry per industry name.  Entries
// keep the order in which each industry was first seen.
func GroupIndustries(rows []Membership) []IndustryCompanies {
	out := make([]IndustryCompanies, 0, len(rows))
	index := make(map[string]int, len(rows))
	for _, r := range rows {
		i, ok := index[r.Industry]
		if !ok {
			i = len(out)
			index[r.Industry] = i
			out = append(out, IndustryCompanies{Industry: r.Industry})
		}
		if r.Company != nil {
			out[i].Companies = append(out[i].Companies, *r.Company)
		}
	}
	return out
}
