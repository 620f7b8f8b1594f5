package roadmap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// CatalogCareer is a built-in career with its milestones.
type CatalogCareer struct {
	Career     Career
	Milestones []CatalogMilestone
}

// CatalogMilestone lists skill names in display casing.
type CatalogMilestone struct {
	Title  string
	Skills []string
}

// Catalog is the built-in knowledge base loaded by Seed.
var Catalog = []CatalogCareer{
	{
		Career: Career{
			Title:        "Frontend Developer",
			Description:  "Build beautiful, responsive, and user-friendly websites and web applications.",
			Difficulty:   "intermediate",
			Duration:     "6-8 months",
			MarketDemand: "high",
		},
		Milestones: []CatalogMilestone{
			{"Foundational Knowledge", []string{"HTML5 & CSS3", "JavaScript (ES6+)", "Git"}},
			{"Framework Mastery", []string{"React", "Vue.js", "TypeScript", "API Integration"}},
			{"Advanced Concepts", []string{"Responsive Design", "CSS Frameworks", "Webpack"}},
			{"Performance & Optimization", []string{"Webpack", "Monitoring"}},
		},
	},
	{
		Career: Career{
			Title:        "Backend Developer",
			Description:  "Develop server-side logic, databases, and APIs that power web applications.",
			Difficulty:   "intermediate",
			Duration:     "7-9 months",
			MarketDemand: "high",
		},
		Milestones: []CatalogMilestone{
			{"Programming Fundamentals", []string{"Python", "Node.js", "Java", "C#", "Git"}},
			{"Database & APIs", []string{"SQL", "NoSQL", "REST APIs", "GraphQL"}},
			{"Architecture & Design", []string{"Microservices", "Database Design", "Authentication"}},
			{"DevOps & Deployment", []string{"Docker", "CI/CD", "Linux"}},
		},
	},
	{
		Career: Career{
			Title:        "Data Scientist",
			Description:  "Analyze complex data sets to help organizations make better decisions.",
			Difficulty:   "advanced",
			Duration:     "9-12 months",
			MarketDemand: "high",
		},
		Milestones: []CatalogMilestone{
			{"Mathematics & Statistics", []string{"Statistics", "Machine Learning"}},
			{"Programming & Data Manipulation", []string{"Python", "R", "SQL", "Pandas", "NumPy"}},
			{"Machine Learning", []string{"Machine Learning", "Scikit-learn", "TensorFlow"}},
			{"Advanced Analytics", []string{"Data Visualization", "Jupyter Notebooks"}},
		},
	},
	{
		Career: Career{
			Title:        "UX/UI Designer",
			Description:  "Create intuitive and engaging user experiences through design and research.",
			Difficulty:   "intermediate",
			Duration:     "6-8 months",
			MarketDemand: "medium",
		},
		Milestones: []CatalogMilestone{
			{"Design Fundamentals", []string{"Figma", "Adobe XD", "Sketch", "Typography", "Color Theory"}},
			{"User Research", []string{"User Research", "Wireframing"}},
			{"Prototyping & Testing", []string{"Prototyping", "Usability Testing"}},
			{"Design Systems", []string{"Design Systems", "Figma"}},
		},
	},
	{
		Career: Career{
			Title:        "DevOps Engineer",
			Description:  "Bridge the gap between development and operations through automation and infrastructure management.",
			Difficulty:   "intermediate",
			Duration:     "7-9 months",
			MarketDemand: "high",
		},
		Milestones: []CatalogMilestone{
			{"Linux & Networking", []string{"Linux", "Networking", "Security"}},
			{"Cloud Platforms", []string{"AWS", "Azure"}},
			{"Containerization", []string{"Docker", "Kubernetes"}},
			{"Automation & CI/CD", []string{"CI/CD", "Terraform", "Ansible", "Monitoring", "Logging"}},
		},
	},
}

// skillCategories tags catalogue skills; unlisted skills stay untagged.
var skillCategories = map[string]string{
	"HTML5 & CSS3": "technical", "JavaScript (ES6+)": "technical", "TypeScript": "technical",
	"Python": "technical", "Java": "technical", "C#": "technical", "R": "technical",
	"SQL": "technical", "NoSQL": "technical", "Git": "technical", "Docker": "technical",
	"Kubernetes": "technical", "AWS": "technical", "Azure": "technical", "Linux": "technical",
	"Machine Learning": "domain", "Statistics": "domain", "Data Visualization": "domain",
	"User Research": "domain", "Usability Testing": "domain", "Design Systems": "domain",
	"Typography": "domain", "Color Theory": "domain", "Security": "domain", "Networking": "domain",
}

// Seed loads Catalog into g. Careers whose title already exists are left as
// they are, so Seed can run on every start. Returns the number of careers added.
func Seed(ctx context.Context, g *Graph) (int, error) {
	added := 0
	for _, cc := range Catalog {
		if _, err := g.store.CareerByTitle(ctx, cc.Career.Title); err == nil {
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return added, fmt.Errorf("seed: %w", err)
		}

		if err := g.seedCareer(ctx, cc); err != nil {
			return added, fmt.Errorf("seed %q: %w", cc.Career.Title, err)
		}
		added++
	}
	if added > 0 {
		slog.Info("roadmap catalog seeded", slog.Int("careers", added))
	}
	return added, nil
}

func (g *Graph) seedCareer(ctx context.Context, cc CatalogCareer) error {
	career, err := g.AddCareer(ctx, cc.Career)
	if err != nil {
		return err
	}
	for i, cm := range cc.Milestones {
		m, err := g.AddMilestone(ctx, career.ID, cm.Title, i+1)
		if err != nil {
			return err
		}
		for _, name := range cm.Skills {
			s, err := g.EnsureSkill(ctx, name, skillCategories[name])
			if err != nil {
				return err
			}
			if _, err := g.LinkSkillToMilestone(ctx, m.ID, s.ID, nil); err != nil {
				return err
			}
		}
	}
	return nil
}
