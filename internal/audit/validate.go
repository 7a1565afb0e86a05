// Package audit checks extracted vouchers for internal consistency.
package audit

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tallyx-dev/tallyx/internal/model"
)

// Rule numbers reported in Issue.Rule.
const (
	RuleBalanced     = 1 // debit total equals credit total
	RuleDeemedSide   = 2 // entry side agrees with the backend's deemed-positive flag
	RuleDateFormat   = 3 // date normalized to YYYY-MM-DD
	RuleUniqueNumber = 4 // voucher number unique within its type
)

// Issue describes a single rule violation.
type Issue struct {
	Rule        int    `json:"rule"`
	Voucher     string `json:"voucher"`
	Description string `json:"description"`
}

func (i Issue) Error() string {
	return fmt.Sprintf("rule %d [%s]: %s", i.Rule, i.Voucher, i.Description)
}

var isoDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ref identifies a voucher in issues as "<type> #<number>".
func ref(v model.Voucher) string {
	return fmt.Sprintf("%s #%s", v.Type, v.Number)
}

// Vouchers checks vouchers that were extracted with their ledger entries.
// Vouchers without entries are only checked for date and numbering.
func Vouchers(vouchers []model.Voucher) []Issue {
	var issues []Issue

	seen := make(map[string]bool)
	for _, v := range vouchers {
		id := ref(v)

		if len(v.Entries) > 0 {
			debit, credit := v.Totals()
			if !debit.Equal(credit) {
				issues = append(issues, Issue{
					Rule:        RuleBalanced,
					Voucher:     id,
					Description: fmt.Sprintf("debits (%s) != credits (%s)", debit.StringFixed(2), credit.StringFixed(2)),
				})
			}
		}

		for i, e := range v.Entries {
			if e.Amount.IsZero() {
				continue
			}
			if (e.Side == model.Debit) != e.IsDeemedPositive {
				issues = append(issues, Issue{
					Rule:        RuleDeemedSide,
					Voucher:     id,
					Description: fmt.Sprintf("entry %d (%s) is %s but deemed-positive is %t", i+1, e.LedgerName, e.Side, e.IsDeemedPositive),
				})
			}
		}

		if !isoDate.MatchString(v.Date) {
			issues = append(issues, Issue{
				Rule:        RuleDateFormat,
				Voucher:     id,
				Description: fmt.Sprintf("date %q is not YYYY-MM-DD", v.Date),
			})
		}

		key := strings.ToLower(string(v.Type)) + "\x00" + v.Number
		if seen[key] {
			issues = append(issues, Issue{
				Rule:        RuleUniqueNumber,
				Voucher:     id,
				Description: "duplicate voucher number",
			})
		}
		seen[key] = true
	}
	return issues
}
