// internal/models/user.go
package models

// UserID identifies one respondent.
type UserID string

// User is one questionnaire respondent. The hard-filter attributes (gender,
// accepted genders, age, accepted ages) are derived from the two designated
// hard-filter questions when the snapshot is loaded. Immutable for the
// duration of one matching run.
type User struct {
	ID              UserID
	Gender          string
	AcceptedGenders []string
	Age             int
	AcceptedAges    AgeRange
	Responses       map[string]*Response
}

// Response returns the user's response for a question, or nil when absent.
func (u *User) Response(questionID string) *Response {
	if u.Responses == nil {
		return nil
	}
	return u.Responses[questionID]
}

// AcceptsGender reports whether the user accepts partners of the given
// gender. An empty accepted set accepts everyone.
func (u *User) AcceptsGender(gender string) bool {
	if len(u.AcceptedGenders) == 0 {
		return true
	}
	for _, g := range u.AcceptedGenders {
		if g == gender {
			return true
		}
	}
	return false
}

// AcceptsAge reports whether the partner age falls inside the user's
// accepted range. A zero range accepts everyone.
func (u *User) AcceptsAge(age int) bool {
	if u.AcceptedAges.Min == 0 && u.AcceptedAges.Max == 0 {
		return true
	}
	return u.AcceptedAges.Contains(age)
}
