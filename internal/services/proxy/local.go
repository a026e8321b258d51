// File: internal/services/proxy/local.go
package proxy

import (
	"context"
	"net/http"
	"strings"
	"time"
)

var riddles = []map[string]string{
	{"riddle": "What has keys but no locks?", "answer": "A piano"},
	{"riddle": "What can travel around the world while staying in a corner?", "answer": "A stamp"},
	{"riddle": "What has a head and a tail but no body?", "answer": "A coin"},
	{"riddle": "What gets wetter the more it dries?", "answer": "A towel"},
	{"riddle": "What can you catch but not throw?", "answer": "A cold"},
	{"riddle": "What has hands but can't clap?", "answer": "A clock"},
	{"riddle": "What has a neck but no head?", "answer": "A bottle"},
	{"riddle": "What goes up but never comes down?", "answer": "Your age"},
	{"riddle": "I speak without a mouth and hear without ears. What am I?", "answer": "An echo"},
	{"riddle": "The more you take, the more you leave behind. What am I?", "answer": "Footsteps"},
}

var horoscopes = map[string]string{
	"aries":       "Today brings exciting opportunities. Your energy is high - use it wisely!",
	"taurus":      "Focus on stability today. A financial opportunity may present itself.",
	"gemini":      "Communication is key today. Express yourself clearly and listen to others.",
	"cancer":      "Trust your intuition today. Your emotional intelligence is your superpower.",
	"leo":         "Your creativity shines today. Take center stage and show your talents.",
	"virgo":       "Organization brings peace today. Tackle that project you've been avoiding.",
	"libra":       "Balance is essential today. Make time for both work and relationships.",
	"scorpio":     "Transformation is in the air. Embrace change and let go of the past.",
	"sagittarius": "Adventure calls today. Say yes to new experiences and opportunities.",
	"capricorn":   "Hard work pays off today. Your dedication will be recognized.",
	"aquarius":    "Innovation is your strength today. Think outside the box.",
	"pisces":      "Creativity flows freely today. Express your artistic side.",
}

var colors = []map[string]string{
	{"name": "Coral", "hex": "#FF7F50", "rgb": "255, 127, 80", "meaning": "warmth and energy"},
	{"name": "Teal", "hex": "#008080", "rgb": "0, 128, 128", "meaning": "calm and sophistication"},
	{"name": "Lavender", "hex": "#E6E6FA", "rgb": "230, 230, 250", "meaning": "grace and elegance"},
	{"name": "Mint", "hex": "#98FF98", "rgb": "152, 255, 152", "meaning": "freshness and vitality"},
	{"name": "Crimson", "hex": "#DC143C", "rgb": "220, 20, 60", "meaning": "passion and power"},
	{"name": "Amber", "hex": "#FFBF00", "rgb": "255, 191, 0", "meaning": "warmth and happiness"},
	{"name": "Indigo", "hex": "#4B0082", "rgb": "75, 0, 130", "meaning": "wisdom and intuition"},
	{"name": "Sage", "hex": "#9DC183", "rgb": "157, 193, 131", "meaning": "nature and growth"},
}

var eightBallAnswers = []string{
	"It is certain", "It is decidedly so", "Without a doubt", "Yes definitely",
	"You may rely on it", "As I see it, yes", "Most likely", "Outlook good",
	"Yes", "Signs point to yes", "Reply hazy, try again", "Ask again later",
	"Better not tell you now", "Cannot predict now", "Concentrate and ask again",
	"Don't count on it", "My reply is no", "My sources say no",
	"Outlook not so good", "Very doubtful",
}

var wordsOfDay = []map[string]string{
	{"word": "ephemeral", "definition": "lasting for a very short time", "example": "the ephemeral nature of social media trends"},
	{"word": "serendipity", "definition": "finding something good without looking for it", "example": "meeting your best friend by serendipity at a concert"},
	{"word": "mellifluous", "definition": "sweet or musical; pleasant to hear", "example": "her mellifluous voice calmed everyone"},
	{"word": "sonder", "definition": "realizing everyone has a life as complex as your own", "example": "feeling sonder while people-watching at the mall"},
	{"word": "petrichor", "definition": "the pleasant earthy smell after rain", "example": "the petrichor after a summer storm"},
	{"word": "ineffable", "definition": "too great to be expressed in words", "example": "the ineffable beauty of the northern lights"},
	{"word": "luminous", "definition": "giving off light; bright or shining", "example": "the luminous glow of fireflies at night"},
	{"word": "ethereal", "definition": "extremely delicate, light, otherworldly", "example": "the ethereal music of the orchestra"},
	{"word": "halcyon", "definition": "denoting a period of happiness and peace", "example": "remembering the halcyon days of childhood"},
	{"word": "resplendent", "definition": "dazzling in appearance; gorgeous", "example": "the resplendent sunset painted the sky"},
}

// Riddle returns one random riddle with its answer.
func (s *Service) Riddle(_ context.Context) (interface{}, error) {
	return riddles[s.pick(len(riddles))], nil
}

// Horoscope returns the daily reading for a zodiac sign. Unknown signs read
// as aries.
func (s *Service) Horoscope(_ context.Context, sign string) (interface{}, error) {
	sign = strings.ToLower(strings.TrimSpace(sign))
	if sign == "" {
		sign = "aries"
	}
	reading, ok := horoscopes[sign]
	if !ok {
		reading = horoscopes["aries"]
	}
	return map[string]string{"sign": sign, "horoscope": reading}, nil
}

// Color returns one random color with its meaning.
func (s *Service) Color(_ context.Context) (interface{}, error) {
	return colors[s.pick(len(colors))], nil
}

// EightBall answers a yes/no question with a classic magic 8-ball reply.
func (s *Service) EightBall(_ context.Context, question string) (interface{}, error) {
	if question == "" {
		question = "Will it happen?"
	}
	return map[string]string{
		"question": question,
		"answer":   eightBallAnswers[s.pick(len(eightBallAnswers))],
	}, nil
}

// WordOfDay returns a vocabulary word keyed to the calendar day, so everyone
// sees the same word on the same date.
func (s *Service) WordOfDay(_ context.Context) (interface{}, error) {
	day := s.now().Day()
	return wordsOfDay[day%len(wordsOfDay)], nil
}

// Time reports the current local time in a timezone. Unknown zone names are a
// caller error.
func (s *Service) Time(_ context.Context, timezone string) (interface{}, error) {
	if timezone == "" {
		timezone = "America/New_York"
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, failed(http.StatusInternalServerError, "Failed to get time")
	}
	now := s.now().In(loc)
	return map[string]string{
		"time":     now.Format("3:04:05 PM"),
		"date":     now.Format("1/2/2006"),
		"timezone": timezone,
	}, nil
}
