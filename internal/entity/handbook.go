package entity

// Handbook is a titled document of policy sections, rendered by the sample generator
type Handbook struct {
	Title    string
	Sections []Section
}

type Section struct {
	Heading string
	Lines   []string
}

// SampleHandbook is the three-section company policy used as test content
func SampleHandbook() *Handbook {
	return &Handbook{
		Title: "TechCorp Employee Handbook (2025)",
		Sections: []Section{
			{
				Heading: "1. Leave Policy",
				Lines: []string{
					"All full-time employees are eligible for the following leave categories:",
					"- Annual Leave: 25 days per year. (Must be used by Dec 31st).",
					"- Sick Leave: 10 days per year. (Requires medical certificate if > 2 days).",
					"- Casual Leave: 7 days. (Cannot be combined with Annual Leave).",
					"Note: Unused annual leave does not carry over to the next year.",
				},
			},
			{
				Heading: "2. Remote Work Policy",
				Lines: []string{
					"Employees are allowed to Work from Home (WFH) for 2 days a week.",
					"The designated WFH days are Tuesday and Thursday.",
					"Core Collaboration Hours: All employees must be online between 10:00 AM and 4:00 PM.",
					"Employees must ensure they have a stable internet connection of at least 50 Mbps.",
				},
			},
			{
				Heading: "3. Travel & Expense Policy",
				Lines: []string{
					"Meal Allowance: Employees working past 9:00 PM can claim a dinner allowance of up to $30.",
					"Flight Travel: Economy class is mandatory for all flights under 6 hours.",
					"Team Outings: The budget for quarterly team outings is capped at $50 per head.",
				},
			},
		},
	}
}
