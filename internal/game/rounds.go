package game

// Department groups the job positions rotated through across rounds.
type Department struct {
	Name      string
	Positions []string
}

// Departments in rotation order. Every position has a local candidate dataset.
var Departments = []Department{
	{Name: "Technology", Positions: []string{"Software Developer", "Data Scientist"}},
	{Name: "Business", Positions: []string{"Marketing Manager", "Financial Analyst", "Sales Executive"}},
	{Name: "Creative", Positions: []string{"Product Designer"}},
	{Name: "People", Positions: []string{"Human Resources Director", "Customer Experience Manager"}},
	{Name: "Operations", Positions: []string{"Project Manager", "Operations Manager"}},
}

// PositionForRound returns the department and job position for a 1-based round.
// Rounds cycle through departments first, then through positions within each department.
func PositionForRound(round int) (department, position string) {
	idx := max(round-1, 0)
	d := Departments[idx%len(Departments)]
	return d.Name, d.Positions[(idx/len(Departments))%len(d.Positions)]
}

// Popup is the educational card shown after a round.
type Popup struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Tip     string `json:"tip"`
}

var popups = []Popup{
	{
		Title:   "Name Bias in Hiring",
		Content: `Studies show that candidates with traditionally "White-sounding" names receive 50% more callbacks than identical resumes with names perceived as belonging to racial minorities.`,
		Tip:     `Consider implementing "blind resume" reviews where names and identifying information are removed during initial screening.`,
	},
	{
		Title:   "Age Discrimination Awareness",
		Content: "Research indicates that workers over 40 experience bias in hiring, with applicants over 50 having to submit up to 50% more applications to receive the same number of interviews as younger candidates.",
		Tip:     "Focus on job-relevant skills and experiences rather than graduation dates or career length. Consider implementing age-blind application reviews.",
	},
	{
		Title:   "Gender Bias in Technical Roles",
		Content: "Studies show that women in technical fields face bias during hiring, with identical resumes receiving different evaluations when the name is changed from male to female.",
		Tip:     "Use structured interviews with predetermined questions and evaluation criteria to reduce the impact of unconscious gender bias.",
	},
	{
		Title:   "Education Prestige Bias",
		Content: "Candidates from prestigious universities often receive preferential treatment regardless of actual skills or experience, limiting diversity and overlooking qualified candidates from other institutions.",
		Tip:     "Implement skills-based assessments that directly measure job-relevant abilities rather than using alma mater as a proxy for quality.",
	},
	{
		Title:   "Affinity Bias Awareness",
		Content: "People naturally gravitate toward candidates who remind them of themselves, creating 'mini-me' hiring patterns that limit diversity and innovation.",
		Tip:     "Include diverse perspectives in the hiring process and create accountability mechanisms to challenge hiring decisions.",
	},
}

// PopupForRound returns the card for a 1-based round. Rounds past the fifth have none.
func PopupForRound(round int) (Popup, bool) {
	if round < 1 || round > len(popups) {
		return Popup{}, false
	}
	return popups[round-1], true
}
