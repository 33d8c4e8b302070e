package job

type ListSummary struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	CompanyLogoURL  string  `json:"company_logo_url"`
	Rating          float64 `json:"rating"`
	Location        string  `json:"location"`
	EmploymentType  string  `json:"employment_type"`
	PackagePerAnnum string  `json:"package_per_annum"`
	JobDescription  string  `json:"job_description"`
}

type SkillView struct {
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

type LifeAtCompanyView struct {
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

type Detail struct {
	ListSummary
	CompanyWebsiteURL string            `json:"company_website_url"`
	Skills            []SkillView       `json:"skills"`
	LifeAtCompany     LifeAtCompanyView `json:"life_at_company"`
}

// SimilarSummary is keyed by _id on the wire, unlike the other views.
type SimilarSummary struct {
	ID             string  `json:"_id"`
	Title          string  `json:"title"`
	CompanyLogoURL string  `json:"company_logo_url"`
	Rating         float64 `json:"rating"`
	Location       string  `json:"location"`
	EmploymentType string  `json:"employment_type"`
	JobDescription string  `json:"job_description"`
}

func ToListSummary(j Job) ListSummary {
	return ListSummary{
		ID:              j.ID,
		Title:           j.Title,
		CompanyLogoURL:  j.CompanyLogoURL,
		Rating:          j.Rating,
		Location:        j.Location,
		EmploymentType:  j.EmploymentType,
		PackagePerAnnum: j.PackagePerAnnum,
		JobDescription:  j.JobDescription,
	}
}

func ToDetail(j Job) Detail {
	skills := make([]SkillView, 0, len(j.Skills))
	for _, s := range j.Skills {
		skills = append(skills, SkillView{Name: s.Name, ImageURL: s.ImageURL})
	}
	return Detail{
		ListSummary:       ToListSummary(j),
		CompanyWebsiteURL: j.CompanyWebsiteURL,
		Skills:            skills,
		LifeAtCompany: LifeAtCompanyView{
			Description: j.LifeAtCompany.Description,
			ImageURL:    j.LifeAtCompany.ImageURL,
		},
	}
}

func ToSimilarSummary(j Job) SimilarSummary {
	return SimilarSummary{
		ID:             j.ID,
		Title:          j.Title,
		CompanyLogoURL: j.CompanyLogoURL,
		Rating:         j.Rating,
		Location:       j.Location,
		EmploymentType: j.EmploymentType,
		JobDescription: j.JobDescription,
	}
}
