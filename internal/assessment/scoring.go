package assessment

import (
	"time"

	"riskguard/internal/customer"
)

// Scoring rule weights. Rules are additive and evaluated independently;
// several may fire for the same customer.
const (
	baseScore = 50

	ageUnder25Points = 20
	age25To34Points  = 10
	ageOver65Points  = 15
	motorPoints      = 15
	healthPoints     = 5
	lifePoints       = 10
	unverifiedPoints = 20
	verifiedCredit   = -5
	sparseContact    = 15
	completeContact  = -10
	contactThreshold = 2
	contactMax       = 4
)

// ScoreResult is the output of the risk scorer.
type ScoreResult struct {
	Score                  int
	Level                  RiskLevel
	Recommendation         Result
	Factors                []string
	Explanation            string
	FlaggedForManualReview bool
}

// Score computes the risk score for a customer. This is pure domain logic -
// no I/O, no side effects. The reference time is passed in so callers and
// tests control "now".
//
// Starting score is 50; each rule adds or subtracts points and records a
// human-readable factor. The final score is clamped to [0,100]; level and
// recommendation are pure functions of the clamped score.
func Score(c *customer.Customer, now time.Time) ScoreResult {
	score := baseScore
	var factors []string

	// Age rule: younger applicants carry higher risk. A missing or invalid
	// date of birth skips the rule and is recorded explicitly.
	if c.DateOfBirth == nil || c.DateOfBirth.IsZero() {
		factors = append(factors, "Date of birth missing or invalid")
	} else {
		age := now.Year() - c.DateOfBirth.Year()
		switch {
		case age < 25:
			score += ageUnder25Points
			factors = append(factors, "Young age (< 25 years)")
		case age < 35:
			score += age25To34Points
			factors = append(factors, "Relatively young age (25-35 years)")
		case age > 65:
			score += ageOver65Points
			factors = append(factors, "Senior age (> 65 years)")
		}
	}

	switch c.InsuranceType {
	case customer.InsuranceMotor:
		score += motorPoints
		factors = append(factors, "Motor insurance (higher risk category)")
	case customer.InsuranceHealth:
		score += healthPoints
		factors = append(factors, "Health insurance")
	case customer.InsuranceLife:
		score += lifePoints
		factors = append(factors, "Life insurance")
	}

	if !c.DocumentVerified {
		score += unverifiedPoints
		factors = append(factors, "Documents not verified")
	} else {
		score += verifiedCredit
		factors = append(factors, "Documents verified (lower risk)")
	}

	completeness := contactCompleteness(c)
	if completeness < contactThreshold {
		score += sparseContact
		factors = append(factors, "Incomplete contact information")
	} else if completeness == contactMax {
		score += completeContact
		factors = append(factors, "Complete contact information")
	}

	score = clamp(score, 0, 100)
	level := LevelForScore(score)
	result := ResultForLevel(level)

	return ScoreResult{
		Score:                  score,
		Level:                  level,
		Recommendation:         result,
		Factors:                factors,
		Explanation:            explain(factors),
		FlaggedForManualReview: result == ResultReviewRequired,
	}
}

// contactCompleteness counts reachable contact channels: email and phone one
// point each, a full postal address (address, city and state) two points.
func contactCompleteness(c *customer.Customer) int {
	n := 0
	if c.Email != "" {
		n++
	}
	if c.Phone != "" {
		n++
	}
	if c.Address != "" && c.City != "" && c.State != "" {
		n += 2
	}
	return n
}

func explain(factors []string) string {
	msg := "Risk assessment based on customer profile analysis."
	if len(factors) == 0 {
		return msg
	}
	msg += " Factors considered: " + factors[0]
	for _, f := range factors[1:] {
		msg += ", " + f
	}
	return msg
}

func clamp(v, low, high int) int {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
