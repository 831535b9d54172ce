package dataservice

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/hackboard/backend/internal/models"
)

const topTechStackSize = 6

// StageCount is the number of ideas at one stage.
type StageCount struct {
	Stage int    `json:"stage"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TechCount is how many ideas list one technology.
type TechCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Summary aggregates the dashboard analytics.
type Summary struct {
	TotalEvents            int                        `json:"totalEvents"`
	TotalIdeas             int                        `json:"totalIdeas"`
	TotalUsers             int                        `json:"totalUsers"`
	TotalParticipants      int                        `json:"totalParticipants"`
	ActiveEvents           int                        `json:"activeEvents"`
	CompletedIdeas         int                        `json:"completedIdeas"`
	LongRunningIdeas       int                        `json:"longRunningIdeas"`
	AvgParticipantsPerIdea float64                    `json:"avgParticipantsPerIdea"`
	IdeasByStage           []StageCount               `json:"ideasByStage"`
	TopTechStack           []TechCount                `json:"topTechStack"`
	StatusDistribution     map[models.EventStatus]int `json:"statusDistribution"`
}

// SkillStat counts the users and ideas matching one skill.
type SkillStat struct {
	Skill     string `json:"skill"`
	UserCount int    `json:"userCount"`
	IdeaCount int    `json:"ideaCount"`
}

// Analytics computes the summary over the current store contents.
func (s *Service) Analytics(ctx context.Context) (Summary, error) {
	if err := s.begin(ctx); err != nil {
		return Summary{}, err
	}
	events, err := s.readEvents(ctx)
	if err != nil {
		return Summary{}, err
	}
	ideas, err := s.readIdeas(ctx)
	if err != nil {
		return Summary{}, err
	}
	users, err := s.readUsers(ctx)
	if err != nil {
		return Summary{}, err
	}
	return summarize(events, ideas, users, s.now()), nil
}

func summarize(events []models.Event, ideas []models.Idea, users []models.User, now time.Time) Summary {
	sum := Summary{
		TotalEvents:  len(events),
		TotalIdeas:   len(ideas),
		TotalUsers:   len(users),
		IdeasByStage: make([]StageCount, 0, models.MaxStage),
		TopTechStack: make([]TechCount, 0, topTechStackSize),
		StatusDistribution: map[models.EventStatus]int{
			models.EventUpcoming:  0,
			models.EventActive:    0,
			models.EventCompleted: 0,
		},
	}
	for _, e := range events {
		sum.TotalParticipants += e.CurrentParticipants
		status := e.EffectiveStatus(now)
		sum.StatusDistribution[status]++
		if status == models.EventActive {
			sum.ActiveEvents++
		}
	}

	stages := make([]int, models.MaxStage+1)
	tech := make(map[string]int)
	participants := 0
	for _, idea := range ideas {
		if idea.CurrentStage >= models.MaxStage {
			sum.CompletedIdeas++
		}
		if idea.IsLongRunning {
			sum.LongRunningIdeas++
		}
		if models.ValidStage(idea.CurrentStage) {
			stages[idea.CurrentStage]++
		}
		participants += len(idea.Participants)
		for _, t := range idea.TechStack {
			tech[t]++
		}
	}
	if len(ideas) > 0 {
		sum.AvgParticipantsPerIdea = float64(participants) / float64(len(ideas))
	}
	for st := models.MinStage; st <= models.MaxStage; st++ {
		sum.IdeasByStage = append(sum.IdeasByStage, StageCount{Stage: st, Name: models.StageName(st), Count: stages[st]})
	}

	counts := make([]TechCount, 0, len(tech))
	for name, n := range tech {
		counts = append(counts, TechCount{Name: name, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Name < counts[j].Name
	})
	if len(counts) > topTechStackSize {
		counts = counts[:topTechStackSize]
	}
	sum.TopTechStack = append(sum.TopTechStack, counts...)
	return sum
}

// SkillMatrix lists every skill named by a user or an idea's tech stack,
// sorted, keeping those containing query (case-insensitive). Counts use the
// same substring match, so "React" also counts "React Native".
func (s *Service) SkillMatrix(ctx context.Context, query string) ([]SkillStat, error) {
	if err := s.begin(ctx); err != nil {
		return nil, err
	}
	ideas, err := s.readIdeas(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.readUsers(ctx)
	if err != nil {
		return nil, err
	}
	return skillMatrix(users, ideas, query), nil
}

func skillMatrix(users []models.User, ideas []models.Idea, query string) []SkillStat {
	seen := make(map[string]bool)
	var skills []string
	add := func(list []string) {
		for _, sk := range list {
			if !seen[sk] {
				seen[sk] = true
				skills = append(skills, sk)
			}
		}
	}
	for _, u := range users {
		add(u.Skills)
	}
	for _, idea := range ideas {
		add(idea.TechStack)
	}
	sort.Strings(skills)

	q := strings.ToLower(query)
	out := make([]SkillStat, 0, len(skills))
	for _, sk := range skills {
		lower := strings.ToLower(sk)
		if !strings.Contains(lower, q) {
			continue
		}
		stat := SkillStat{Skill: sk}
		for _, u := range users {
			if anyContains(u.Skills, lower) {
				stat.UserCount++
			}
		}
		for _, idea := range ideas {
			if anyContains(idea.TechStack, lower) {
				stat.IdeaCount++
			}
		}
		out = append(out, stat)
	}
	return out
}

func anyContains(list []string, lowerNeedle string) bool {
	for _, v := range list {
		if strings.Contains(strings.ToLower(v), lowerNeedle) {
			return true
		}
	}
	return false
}
