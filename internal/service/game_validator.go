package service

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/maschh/sports-edge/internal/models"
)

// GameValidator validates loaded games before feature engineering
type GameValidator struct {
	validate *validator.Validate
	logger   logrus.FieldLogger
}

// NewGameValidator creates a new game validator
func NewGameValidator(logger logrus.FieldLogger) *GameValidator {
	if logger == nil {
		logger = logrus.New()
	}
	return &GameValidator{validate: validator.New(), logger: logger}
}

// ValidateGame returns every problem found with a game; empty means valid
func (v *GameValidator) ValidateGame(g models.Game) []string {
	var problems []string

	if err := v.validate.Struct(g); err != nil {
		if fieldErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrors {
				problems = append(problems, fmt.Sprintf("%s is %s", strings.ToLower(fe.Field()), fe.Tag()))
			}
		} else {
			problems = append(problems, err.Error())
		}
	}

	if g.Home != "" && g.Home == g.Away {
		problems = append(problems, fmt.Sprintf("team %s cannot play itself", g.Home))
	}

	if (g.HomeScore == nil) != (g.AwayScore == nil) {
		problems = append(problems, "scores must be both known or both unknown")
	}
	if g.HomeScore != nil && *g.HomeScore < 0 {
		problems = append(problems, fmt.Sprintf("home score cannot be negative, got %d", *g.HomeScore))
	}
	if g.AwayScore != nil && *g.AwayScore < 0 {
		problems = append(problems, fmt.Sprintf("away score cannot be negative, got %d", *g.AwayScore))
	}

	return problems
}

// Filter drops invalid games, logging each one, and returns the rest with
// the number rejected
func (v *GameValidator) Filter(league models.League, games []models.Game) ([]models.Game, int) {
	valid := make([]models.Game, 0, len(games))
	rejected := 0
	for _, g := range games {
		if problems := v.ValidateGame(g); len(problems) > 0 {
			rejected++
			v.logger.WithFields(logrus.Fields{
				"league":   league,
				"date":     g.Date.Format("2006-01-02"),
				"home":     g.Home,
				"away":     g.Away,
				"problems": problems,
			}).Warn("Dropping invalid game")
			continue
		}
		valid = append(valid, g)
	}
	return valid, rejected
}
