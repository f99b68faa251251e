// internal/snapshot/parse.go
package snapshot

import (
	"encoding/json"
	"fmt"

	"match-engine/internal/common/logger"
	"match-engine/internal/common/metrics"
	"match-engine/internal/models"
	"match-engine/pkg/registry"
)

// Wire shapes for one stored questionnaire submission. Answers and
// preferences are shape-sniffed: number, string, string array, or a
// min/max object, matching what the intake service writes.
type wireResponse struct {
	Answer      json.RawMessage `json:"answer"`
	Preference  json.RawMessage `json:"preference"`
	Importance  string          `json:"importance"`
	Dealbreaker bool            `json:"dealbreaker"`
}

type wireSubmission struct {
	UserID    string                  `json:"userId"`
	Responses map[string]wireResponse `json:"responses"`
}

type wireRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Parser turns stored submissions into scoring-ready users. Responses to
// questions absent from the registry are dropped, and responses whose
// payload cannot be decoded are logged, counted and treated as missing.
type Parser struct {
	reg *registry.Registry
	log logger.Logger
}

func NewParser(reg *registry.Registry, log logger.Logger) *Parser {
	return &Parser{reg: reg, log: log}
}

// ParseUser decodes one submission document for the given user. The error
// return covers only document-level failures; per-question problems
// degrade to missing responses.
func (p *Parser) ParseUser(id models.UserID, raw []byte) (*models.User, error) {
	var sub wireSubmission
	if err := json.Unmarshal(raw, &sub); err != nil {
		return nil, fmt.Errorf("submission for user %s: %w", id, err)
	}
	if id == "" {
		id = models.UserID(sub.UserID)
	}
	if id == "" {
		return nil, fmt.Errorf("submission without user id")
	}

	u := &models.User{
		ID:        id,
		Responses: make(map[string]*models.Response, len(sub.Responses)),
	}

	for qid, wr := range sub.Responses {
		if _, known := p.reg.Get(qid); !known {
			p.log.Debug("response to unknown question dropped", map[string]interface{}{
				"user_id":     string(id),
				"question_id": qid,
			})
			continue
		}

		resp, err := p.parseResponse(wr)
		if err != nil {
			p.malformed(id, qid, err)
			continue
		}
		u.Responses[qid] = resp
	}

	p.deriveHardFilters(u)
	return u, nil
}

func (p *Parser) parseResponse(wr wireResponse) (*models.Response, error) {
	answer, err := decodeAnswer(wr.Answer)
	if err != nil {
		return nil, err
	}
	pref, err := decodePreference(wr.Preference)
	if err != nil {
		return nil, err
	}

	imp := models.Importance(wr.Importance)
	if !imp.Valid() {
		imp = models.Important
	}

	return &models.Response{
		Answer:      answer,
		Preference:  pref,
		Importance:  imp,
		Dealbreaker: wr.Dealbreaker,
	}, nil
}

func (p *Parser) malformed(id models.UserID, qid string, err error) {
	metrics.MalformedResponses.WithLabelValues(qid).Inc()
	p.log.Warn("malformed response treated as missing", map[string]interface{}{
		"user_id":     string(id),
		"question_id": qid,
		"error":       err.Error(),
	})
}

// deriveHardFilters lifts the two designated hard-filter responses into
// the user's prefilter attributes. The responses stay in the map so the
// diagnostics still see them, but the calculators skip hard-filter
// questions.
func (p *Parser) deriveHardFilters(u *models.User) {
	if gq := p.reg.GenderQuestion(); gq != "" {
		if r := u.Response(gq); r != nil {
			if r.Answer != nil && r.Answer.Kind == models.AnswerText {
				u.Gender = r.Answer.Text
			}
			switch r.Preference.Kind {
			case models.PrefSet:
				u.AcceptedGenders = r.Preference.Set
			case models.PrefText:
				u.AcceptedGenders = []string{r.Preference.Text}
			}
		}
	}
	if aq := p.reg.AgeQuestion(); aq != "" {
		if r := u.Response(aq); r != nil {
			if r.Answer != nil && r.Answer.Kind == models.AnswerNumber {
				u.Age = int(r.Answer.Number)
			}
			if r.Preference.Kind == models.PrefAgeRange {
				u.AcceptedAges = r.Preference.Range
			}
		}
	}
}

func decodeAnswer(raw json.RawMessage) (*models.Answer, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("answer: %w", err)
		}
		return models.TextAnswer(s), nil
	case '[':
		var set []string
		if err := json.Unmarshal(raw, &set); err != nil {
			return nil, fmt.Errorf("answer: %w", err)
		}
		return models.SetAnswer(set...), nil
	case '{':
		var r wireRange
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("answer: %w", err)
		}
		return models.AgeRangeAnswer(models.AgeRange{Min: r.Min, Max: r.Max}), nil
	default:
		var n float64
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("answer: %w", err)
		}
		return models.NumberAnswer(n), nil
	}
}

func decodePreference(raw json.RawMessage) (models.Preference, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return models.NoPreference(), nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return models.Preference{}, fmt.Errorf("preference: %w", err)
		}
		return models.TextPreference(s), nil
	case '[':
		var set []string
		if err := json.Unmarshal(raw, &set); err != nil {
			return models.Preference{}, fmt.Errorf("preference: %w", err)
		}
		return models.SetPreference(set...), nil
	case '{':
		var r wireRange
		if err := json.Unmarshal(raw, &r); err != nil {
			return models.Preference{}, fmt.Errorf("preference: %w", err)
		}
		return models.AgeRangePreference(models.AgeRange{Min: r.Min, Max: r.Max}), nil
	default:
		var n float64
		if err := json.Unmarshal(raw, &n); err != nil {
			return models.Preference{}, fmt.Errorf("preference: %w", err)
		}
		return models.NumberPreference(n), nil
	}
}
