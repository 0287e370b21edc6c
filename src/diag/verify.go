package diag

import "fmt"

// Verify looks at the samples for things the console output alone
// won't flag: a counter that went backwards during the tick phase, or an
// alarm that fired somewhere other than AlarmLead counts after the last.
func (res *Result) Verify(cfg Config) []string {
	issues := []string{}
	if res.Mismatches > 0 {
		issues = append(issues, fmt.Sprintf("%d counter readback mismatches", res.Mismatches))
	}
	for i := 1; i < len(res.IncrementSamples); i++ {
		prev, cur := res.IncrementSamples[i-1], res.IncrementSamples[i]
		if cur < prev || (cfg.AckIncrement && cur == prev) {
			issues = append(issues, fmt.Sprintf("tick %d: counter %d after %d", i, cur, prev))
		}
	}
	prev := uint32(0)
	for i, cur := range res.AlarmSamples {
		if cur-prev != cfg.AlarmLead {
			issues = append(issues, fmt.Sprintf("alarm %d: counter %d, expected %d",
				i, cur, prev+cfg.AlarmLead))
		}
		prev = cur
	}
	return issues
}
